package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smartwaste/pickup/pkg/domain"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me/" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Authentication credentials were not provided."}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"name": "Asha", "phone": "98765"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", WithTokenSource(func() string { return "test-token" }))
	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error: %v", err)
	}
	if me.Name() != "Asha" {
		t.Errorf("Name = %q, want %q", me.Name(), "Asha")
	}
}

func TestMe_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "not authenticated"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("IsStatus(err, 401) = false for %v", err)
	}
	if got := Detail(err); got != "not authenticated" {
		t.Errorf("Detail(err) = %q, want %q", got, "not authenticated")
	}
}

func TestAuthHeaderPrecedence(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	persisted := ""
	c := New(srv.URL+"/api", WithTokenSource(func() string { return persisted }))
	ctx := context.Background()

	// No token anywhere: no header.
	if _, err := c.ListCenters(ctx); err != nil {
		t.Fatal(err)
	}
	// Default header only.
	c.SetAuthToken("default-tok")
	if _, err := c.ListCenters(ctx); err != nil {
		t.Fatal(err)
	}
	// Persisted token wins over the default header.
	persisted = "stored-tok"
	if _, err := c.ListCenters(ctx); err != nil {
		t.Fatal(err)
	}
	// Clearing the default header leaves the hook in charge.
	persisted = ""
	c.SetAuthToken("")
	if _, err := c.ListCenters(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{"", "Bearer default-tok", "Bearer stored-tok", ""}
	mu.Lock()
	defer mu.Unlock()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("request %d Authorization = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	if _, err := c.ListWasteTypes(context.Background()); err != nil {
		t.Fatalf("ListWasteTypes() error: %v", err)
	}
}

func TestLoginKeepsRawPayload(t *testing.T) {
	payload := `{"access":"acc","refresh":"ref","user_id":7}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login/" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email != "a@x.io" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(payload)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	resp, err := c.Login(context.Background(), Credentials{Email: "a@x.io", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.Access != "acc" || resp.Refresh != "ref" {
		t.Errorf("tokens = %q/%q, want acc/ref", resp.Access, resp.Refresh)
	}
	if string(resp.Raw) != payload {
		t.Errorf("Raw = %s, want %s", resp.Raw, payload)
	}
}

func TestHTTPErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"boom"}`, "boom"},
		{"error", `{"error":"bad"}`, "bad"},
		{"field errors", `{"password":["too short"],"email":["taken"]}`, "email: taken; password: too short"},
		{"non field", `{"non_field_errors":["Invalid credentials"]}`, "Invalid credentials"},
		{"plain text", `oops`, "oops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			c := New(srv.URL + "/api/")
			err := c.ForgotPassword(context.Background(), "a@x.io")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := Detail(err); got != tt.want {
				t.Errorf("Detail = %q, want %q", got, tt.want)
			}
			if !strings.Contains(err.Error(), "HTTP 400") {
				t.Errorf("error = %q, want it to contain 'HTTP 400'", err.Error())
			}
		})
	}
}

func TestNearestCenter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var loc map[string]float64
		if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if loc["latitude"] != 11.5 || loc["longitude"] != 75.25 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"center":{"id":4,"name":"East","latitude":"11.6","longitude":"75.3"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	resp, err := c.NearestCenter(context.Background(), domain.Coordinate{Lat: 11.5, Lng: 75.25})
	if err != nil {
		t.Fatalf("NearestCenter() error: %v", err)
	}
	if resp.Center.ID != 4 || resp.Center.Name != "East" {
		t.Errorf("center = %+v", resp.Center)
	}
}

func TestCreateBookingMultipart(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "bag.png")
	if err := os.WriteFile(img, pngHeader, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		req        BookingRequest
		wantCenter bool
		wantImage  bool
	}{
		{"no center no image", BookingRequest{WasteTypeID: 2, QuantityKg: "5"}, false, false},
		{"center and image", BookingRequest{WasteTypeID: 2, QuantityKg: "5", SelectedCenterID: 3, ImagePath: img}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				if r.FormValue("waste_type_id") != "2" || r.FormValue("quantity_kg") != "5" {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				_, hasCenter := r.MultipartForm.Value["selected_center_id"]
				files := r.MultipartForm.File["waste_image"]
				if hasCenter != tt.wantCenter || (len(files) > 0) != tt.wantImage {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				if tt.wantImage {
					if ct := files[0].Header.Get("Content-Type"); ct != "image/png" {
						w.WriteHeader(http.StatusUnsupportedMediaType)
						return
					}
					f, _ := files[0].Open() //nolint:errcheck
					data, _ := io.ReadAll(f) //nolint:errcheck
					if len(data) != len(pngHeader) {
						w.WriteHeader(http.StatusBadRequest)
						return
					}
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id":31,"status":"pending","total_price":"50.00"}`)) //nolint:errcheck
			}))
			defer srv.Close()

			c := New(srv.URL + "/api/")
			b, err := c.CreateBooking(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("CreateBooking() error: %v", err)
			}
			if b.ID != 31 {
				t.Errorf("booking id = %d, want 31", b.ID)
			}
		})
	}
}

func TestCreateBookingMissingImage(t *testing.T) {
	c := New("http://127.0.0.1:1/api/")
	_, err := c.CreateBooking(context.Background(), BookingRequest{ImagePath: "/does/not/exist.png"})
	if err == nil {
		t.Fatal("expected error for missing image file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestBookingHistoryAndDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/waste/booking/history/":
			w.Write([]byte(`[{"id":1,"status":"pending"},{"id":2,"status":"completed"}]`)) //nolint:errcheck
		case "/api/waste/booking/2/":
			w.Write([]byte(`{"id":2,"status":"completed","payment_status":"paid"}`)) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	list, err := c.BookingHistory(context.Background())
	if err != nil {
		t.Fatalf("BookingHistory() error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d bookings, want 2", len(list))
	}
	b, err := c.GetBooking(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetBooking() error: %v", err)
	}
	if b.PaymentStatus != "paid" {
		t.Errorf("PaymentStatus = %q, want paid", b.PaymentStatus)
	}
}

func TestDoRequest_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Second) // slow server
		w.Write([]byte(`{}`))      //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.Me(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestMediaURL(t *testing.T) {
	c := New("http://localhost:8000/api/")
	tests := map[string]string{
		"":                                 "",
		"/media/waste/12.jpg":              "http://localhost:8000/media/waste/12.jpg",
		"https://cdn.example.com/a.png":    "https://cdn.example.com/a.png",
		"http://localhost:8000/media/x.jp": "http://localhost:8000/media/x.jp",
	}
	for ref, want := range tests {
		if got := c.MediaURL(ref); got != want {
			t.Errorf("MediaURL(%q) = %q, want %q", ref, got, want)
		}
	}
}
