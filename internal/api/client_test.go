package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, time.Second)
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %T: %v", err, err)
	}
	if apiErr.Kind != want {
		t.Fatalf("expected kind %v, got %v (%v)", want, apiErr.Kind, err)
	}
	if apiErr.Message == "" {
		t.Fatal("classified error should carry a message")
	}
}

// ============================================================
// FetchOrders
// ============================================================

func TestFetchOrders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("expected bearer token, got %q", got)
		}
		io.WriteString(w, `{"success":true,"data":[
			{"_id":"o1","customerName":"alice","orderTime":"2025-06-15T10:00:00Z",
			 "products":[{"productId":"p1","price":10,"quantity":2}]},
			{"_id":"o2","customerName":"bob","orderTime":"2025-06-14T09:00:00Z","products":[]}
		]}`)
	})

	orders, err := c.FetchOrders(context.Background(), "tok123")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].CustomerName != "alice" || orders[0].Total() != 20 {
		t.Fatalf("unexpected first order: %+v", orders[0])
	}
}

func TestFetchOrdersUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"success":false,"message":"token expired"}`)
	})

	_, err := c.FetchOrders(context.Background(), "stale")
	assertKind(t, err, KindUnauthorized)
	var apiErr *Error
	errors.As(err, &apiErr)
	if apiErr.Message != "token expired" {
		t.Fatalf("server message should win, got %q", apiErr.Message)
	}
}

func TestFetchOrdersServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FetchOrders(context.Background(), "tok")
	assertKind(t, err, KindServer)
}

func TestFetchOrdersTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	c.hc.Timeout = 20 * time.Millisecond

	_, err := c.FetchOrders(context.Background(), "tok")
	assertKind(t, err, KindTimeout)
}

func TestFetchOrdersContextDeadline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.FetchOrders(ctx, "tok")
	assertKind(t, err, KindTimeout)
}

func TestFetchOrdersUnreachable(t *testing.T) {
	// Point at a closed server.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second)
	_, err := c.FetchOrders(context.Background(), "tok")
	assertKind(t, err, KindNetwork)
}

func TestFetchOrdersMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":`)
	})

	_, err := c.FetchOrders(context.Background(), "tok")
	assertKind(t, err, KindNetwork)
}

// ============================================================
// Login / Register
// ============================================================

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.c" || body["password"] != "secret1" {
			t.Errorf("unexpected login payload %v", body)
		}
		io.WriteString(w, `{"success":true,"token":"tok-1","user":{"shopName":"Canvas Market","email":"a@b.c"}}`)
	})

	resp, err := c.Login(context.Background(), "a@b.c", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Token != "tok-1" || resp.User.ShopName != "Canvas Market" {
		t.Fatalf("unexpected auth response %+v", resp)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			io.WriteString(w, `{"success":false,"message":"wrong password"}`)
		})

		_, err := c.Login(context.Background(), "a@b.c", "nope")
		assertKind(t, err, KindInvalidCredentials)
	}
}

func TestLoginServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Login(context.Background(), "a@b.c", "secret1")
	assertKind(t, err, KindServer)
}

func TestRegister(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var reg RegisterRequest
		json.NewDecoder(r.Body).Decode(&reg)
		if reg.ShopName != "Canvas Market" || reg.Password != "secret1" {
			t.Errorf("unexpected register payload %+v", reg)
		}
		io.WriteString(w, `{"success":true,"token":"tok-2","user":{"shopName":"Canvas Market"}}`)
	})

	resp, err := c.Register(context.Background(), RegisterRequest{
		ShopName: "Canvas Market",
		Email:    "a@b.c",
		Password: "secret1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Token != "tok-2" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
}

func TestRegisterDuplicateAccount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"success":false,"message":"email already registered"}`)
	})

	_, err := c.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "secret1"})
	assertKind(t, err, KindDuplicateAccount)
}

// ============================================================
// UpdateProfile
// ============================================================

func TestUpdateProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/auth/profile" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("expected bearer token, got %q", got)
		}

		// Email is immutable and must never be sent.
		var raw map[string]any
		json.NewDecoder(r.Body).Decode(&raw)
		if _, present := raw["email"]; present {
			t.Error("profile update must not include email")
		}

		io.WriteString(w, `{"success":true,"user":{"shopName":"New Name","ownerName":"Owner","email":"a@b.c"}}`)
	})

	user, err := c.UpdateProfile(context.Background(), "tok123", ProfileUpdate{
		ShopName:  "New Name",
		OwnerName: "Owner",
		Phone:     "123",
		Address:   "Street 1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if user.ShopName != "New Name" || user.Email != "a@b.c" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestUpdateProfileExpiredToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.UpdateProfile(context.Background(), "expired", ProfileUpdate{})
	assertKind(t, err, KindUnauthorized)
}

// ============================================================
// Kind helpers
// ============================================================

func TestKindOf(t *testing.T) {
	if got := KindOf(&Error{Kind: KindTimeout}); got != KindTimeout {
		t.Errorf("KindOf(*Error) = %v", got)
	}
	if got := KindOf(errors.New("plain")); got != KindNetwork {
		t.Errorf("KindOf(plain error) = %v, want KindNetwork", got)
	}
}
