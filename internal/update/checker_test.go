package update

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDescriptorClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"versionCode": 7, "zipUrl": "https://example.com/m.zip", "version": "v1.7", "extra": true}`))
	}))
	defer srv.Close()

	d, err := NewDescriptorClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if d.ZipURL != "https://example.com/m.zip" {
		t.Errorf("ZipURL = %q", d.ZipURL)
	}
	n, err := d.Version()
	if err != nil || n != 7 {
		t.Errorf("Version() = (%d, %v), want (7, nil)", n, err)
	}
}

func TestDescriptorClient_StringVersionCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"versionCode": "12", "zipUrl": "https://example.com/m.zip"}`))
	}))
	defer srv.Close()

	d, err := NewDescriptorClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	n, err := d.Version()
	if err != nil || n != 12 {
		t.Errorf("Version() = (%d, %v), want (12, nil)", n, err)
	}
}

func TestDescriptorClient_NonIntegerVersionCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"versionCode": "v1.2", "zipUrl": "https://example.com/m.zip"}`))
	}))
	defer srv.Close()

	d, err := NewDescriptorClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, err := d.Version(); !errors.Is(err, ErrVersionFormatInvalid) {
		t.Errorf("Version() error = %v, want ErrVersionFormatInvalid", err)
	}
}

func TestDescriptorClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewDescriptorClient().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrRemoteUnreachable) {
		t.Errorf("Fetch() error = %v, want ErrRemoteUnreachable", err)
	}
}

func TestDescriptorClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := NewDescriptorClient().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrRemoteUnreachable) {
		t.Errorf("Fetch() error = %v, want ErrRemoteUnreachable", err)
	}
}

func TestDescriptorClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := NewDescriptorClient().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrRemoteDescriptorInvalid) {
		t.Errorf("Fetch() error = %v, want ErrRemoteDescriptorInvalid", err)
	}
}

func TestDescriptorClient_MissingFields(t *testing.T) {
	cases := map[string]string{
		"no zipUrl":      `{"versionCode": 3}`,
		"no versionCode": `{"zipUrl": "https://example.com/m.zip"}`,
		"empty object":   `{}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewDescriptorClient().Fetch(context.Background(), srv.URL)
			if !errors.Is(err, ErrRemoteDescriptorInvalid) {
				t.Errorf("Fetch() error = %v, want ErrRemoteDescriptorInvalid", err)
			}
		})
	}
}
