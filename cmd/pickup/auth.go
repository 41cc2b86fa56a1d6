package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/pkg/client"
)

var errLoginFailed = errors.New("Invalid email or password. Please try again.") //nolint:staticcheck // shown verbatim

const (
	forgotSent   = "Password reset instructions have been sent to your email address."
	forgotSoon   = "Password reset feature is coming soon. Please contact support for assistance."
	forgotFailed = "Something went wrong. Please try again later."
)

func newLoginCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in and keep the session for later commands and the interactive app.

The password is prompted for when --password is omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			email, err := flagOrPrompt(cmd, "email", "Email", false)
			if err != nil {
				return err
			}
			password, err := flagOrPrompt(cmd, "password", "Password", true)
			if err != nil {
				return err
			}
			in := forms.Login{Email: strings.TrimSpace(email), Password: password}
			if err := e.forms.Check(in); err != nil {
				return err
			}

			ctx, cancel := e.ctx()
			defer cancel()
			if _, err := e.session.Login(ctx, client.Credentials{Email: in.Email, Password: in.Password}); err != nil {
				e.log.Debug("login failed", zap.Error(err))
				return errLoginFailed
			}

			cur := e.session.Current()
			out := cmd.OutOrStdout()
			switch {
			case !cur.Authenticated():
				return errors.New("login returned no access token")
			case !cur.HasUser():
				fmt.Fprintln(out, warnStyle.Render("Signed in, but your profile could not be loaded. Sign in again to continue."))
			default:
				fmt.Fprintf(out, "Logged in as %s\n", okStyle.Render(cur.User.DisplayName()))
			}
			return nil
		},
	}
	cmd.Flags().StringP("email", "e", "", "account email")
	cmd.Flags().StringP("password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			fields := []struct {
				flag, label string
				secret      bool
			}{
				{"name", "Name", false},
				{"email", "Email", false},
				{"password", "Password", true},
				{"confirm", "Confirm password", true},
			}
			values := map[string]string{}
			for _, f := range fields {
				v, err := flagOrPrompt(cmd, f.flag, f.label, f.secret)
				if err != nil {
					return err
				}
				values[f.flag] = v
			}
			phone, _ := cmd.Flags().GetString("phone")     //nolint:errcheck
			address, _ := cmd.Flags().GetString("address") //nolint:errcheck

			in := forms.Register{
				Name:     strings.TrimSpace(values["name"]),
				Email:    strings.TrimSpace(values["email"]),
				Phone:    strings.TrimSpace(phone),
				Address:  strings.TrimSpace(address),
				Password: values["password"],
				Confirm:  values["confirm"],
			}
			if err := e.forms.Check(in); err != nil {
				return err
			}

			ctx, cancel := e.ctx()
			defer cancel()
			if _, err := e.session.Register(ctx, in.Request()); err != nil {
				return apiError(err, "Registration failed.")
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Registration successful! Please log in."))
			return nil
		},
	}
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().StringP("email", "e", "", "account email")
	cmd.Flags().String("phone", "", "phone number (optional)")
	cmd.Flags().String("address", "", "pickup address (optional)")
	cmd.Flags().StringP("password", "p", "", "password, at least 6 characters")
	cmd.Flags().String("confirm", "", "repeat the password")
	return cmd
}

func newLogoutCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear your session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			cur := e.session.Current()
			if !cur.Authenticated() && !cur.HasUser() {
				fmt.Fprintln(cmd.OutOrStdout(), "Already logged out.")
				return nil
			}
			if err := e.session.Logout(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			u, err := e.guard.Require()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n  %s\n", headerStyle.Render(u.DisplayName()))
			printRows(out, "Email", u.Email(), "Phone", u.Phone(), "Address", u.Address())
			if exp, ok := e.session.TokenExpiry(); ok {
				printRows(out, "Session", sessionLabel(exp, time.Now()))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

// sessionLabel describes a token expiry relative to now.
func sessionLabel(exp, now time.Time) string {
	stamp := exp.Local().Format("2006-01-02 15:04")
	if !exp.After(now) {
		return warnStyle.Render("expired " + stamp + ", run \"pickup login\"")
	}
	return "expires " + stamp + " (in " + exp.Sub(now).Round(time.Minute).String() + ")"
}

func newForgotCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password [email]",
		Short: "Request password reset instructions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			var email string
			if len(args) == 1 {
				email = args[0]
			} else {
				v, err := prompt(cmd, "Email", false)
				if err != nil {
					return err
				}
				email = v
			}
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("Please enter your email address.") //nolint:staticcheck // shown verbatim
			}
			if err := e.forms.Check(forms.Forgot{Email: email}); err != nil {
				return err
			}

			ctx, cancel := e.ctx()
			defer cancel()
			text, err := forgotOutcome(e.client.ForgotPassword(ctx, email))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

// forgotOutcome maps a reset request result to a message or an error. A
// server without the endpoint answers 404, which is not a failure.
func forgotOutcome(err error) (string, error) {
	switch {
	case err == nil:
		return okStyle.Render(forgotSent), nil
	case client.IsStatus(err, http.StatusNotFound):
		return warnStyle.Render(forgotSoon), nil
	}
	if d := client.Detail(err); d != "" {
		return "", errors.New(d)
	}
	return "", errors.New(forgotFailed)
}

func newContactCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			name, _ := cmd.Flags().GetString("name")       //nolint:errcheck
			email, _ := cmd.Flags().GetString("email")     //nolint:errcheck
			message, _ := cmd.Flags().GetString("message") //nolint:errcheck
			in := forms.Contact{
				Name:    strings.TrimSpace(name),
				Email:   strings.TrimSpace(email),
				Message: strings.TrimSpace(message),
			}
			if in.Name == "" || in.Email == "" || in.Message == "" {
				return errors.New("Please complete all fields before sending.") //nolint:staticcheck // shown verbatim
			}
			if err := e.forms.Check(in); err != nil {
				return err
			}

			ctx, cancel := e.ctx()
			defer cancel()
			if err := e.client.SendContact(ctx, client.ContactMessage(in)); err != nil {
				e.log.Warn("send contact failed", zap.Error(err))
				return errors.New("Something went wrong. Please try again.") //nolint:staticcheck // shown verbatim
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Thanks! Your message has been sent."))
			return nil
		},
	}
	cmd.Flags().String("name", "", "your name")
	cmd.Flags().StringP("email", "e", "", "your email")
	cmd.Flags().StringP("message", "m", "", "the message")
	return cmd
}

func newProfileCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Long: `Without flags, refresh and show your profile. With --name, --phone or
--address, update those fields. With --image, upload a new profile picture
(JPG or PNG, up to 5MB).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			u, err := e.guard.Require()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctx, cancel := e.ctx()
			defer cancel()

			flags := cmd.Flags()
			editing := flags.Changed("name") || flags.Changed("phone") || flags.Changed("address")
			image, _ := flags.GetString("image") //nolint:errcheck

			if editing {
				in := forms.Profile{Name: u.Name(), Phone: u.Phone(), Address: u.Address()}
				if flags.Changed("name") {
					in.Name, _ = flags.GetString("name") //nolint:errcheck
				}
				if flags.Changed("phone") {
					in.Phone, _ = flags.GetString("phone") //nolint:errcheck
				}
				if flags.Changed("address") {
					in.Address, _ = flags.GetString("address") //nolint:errcheck
				}
				if err := e.forms.Check(in); err != nil {
					return err
				}
				updated, err := e.client.UpdateMe(ctx, client.ProfileUpdate(in))
				if err != nil {
					return apiError(err, "Error updating profile")
				}
				if err := e.session.UpdateUser(updated); err != nil {
					return err
				}
				u = updated
				fmt.Fprintln(out, okStyle.Render("Profile updated successfully!"))
			}

			if image != "" {
				if _, err := forms.CheckAvatar(image); err != nil {
					return err
				}
				updated, err := e.client.UpdateProfileImage(ctx, image)
				if err != nil {
					e.log.Warn("avatar upload failed", zap.Error(err))
					return errors.New("Upload failed. Please try again.") //nolint:staticcheck // shown verbatim
				}
				if err := e.session.UpdateUser(updated); err != nil {
					return err
				}
				u = updated
				fmt.Fprintln(out, okStyle.Render("Profile picture updated successfully!"))
			}

			if !editing && image == "" {
				fresh, err := e.client.Me(ctx)
				if err != nil {
					e.log.Warn("refresh profile failed", zap.Error(err))
				} else if err := e.session.UpdateUser(fresh); err != nil {
					e.log.Warn("persist user failed", zap.Error(err))
				} else {
					u = fresh
				}
			}

			fmt.Fprintf(out, "\n  %s\n", headerStyle.Render(u.DisplayName()))
			printRows(out, "Name", u.Name(), "Email", u.Email(), "Phone", u.Phone(), "Address", u.Address(), "Avatar", u.ProfileImage())
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("phone", "", "new phone number")
	cmd.Flags().String("address", "", "new address")
	cmd.Flags().String("image", "", "path to a new profile picture")
	return cmd
}

func newPasswordCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			if _, err := e.guard.Require(); err != nil {
				return err
			}
			var in forms.PasswordChange
			for _, f := range []struct {
				flag, label string
				dst         *string
			}{
				{"current", "Current password", &in.Current},
				{"new", "New password", &in.New},
				{"confirm", "Confirm new password", &in.Confirm},
			} {
				v, err := flagOrPrompt(cmd, f.flag, f.label, true)
				if err != nil {
					return err
				}
				*f.dst = v
			}
			if err := e.forms.CheckPasswordChange(in); err != nil {
				return err
			}

			ctx, cancel := e.ctx()
			defer cancel()
			err := e.client.ChangePassword(ctx, client.PasswordChange{CurrentPassword: in.Current, NewPassword: in.New})
			if err != nil {
				return apiError(err, "Password change failed.")
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Password changed successfully!"))
			return nil
		},
	}
	cmd.Flags().String("current", "", "current password (prompted when omitted)")
	cmd.Flags().String("new", "", "new password (prompted when omitted)")
	cmd.Flags().String("confirm", "", "repeat the new password (prompted when omitted)")
	return cmd
}
