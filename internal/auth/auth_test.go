package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// --- gRPC interceptor ---

// passHandler is a grpc.UnaryHandler that returns ("ok", nil).
func passHandler(ctx context.Context, req interface{}) (interface{}, error) {
	return "ok", nil
}

func callWithKey(t *testing.T, interceptor grpc.UnaryServerInterceptor, header, key string) (interface{}, error) {
	t.Helper()
	ctx := context.Background()
	if key != "" {
		ctx = metadata.NewIncomingContext(ctx, metadata.Pairs(header, key))
	}
	return interceptor(ctx, nil, &grpc.UnaryServerInfo{}, passHandler)
}

func TestAPIKeyInterceptor_ModeNone_PassesThrough(t *testing.T) {
	i := APIKeyInterceptor("none", "x-api-key", "secret")
	res, err := i(context.Background(), nil, &grpc.UnaryServerInfo{}, passHandler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != "ok" {
		t.Errorf("result: got %v, want ok", res)
	}
}

func TestAPIKeyInterceptor_EmptyKey_PassesThrough(t *testing.T) {
	i := APIKeyInterceptor("apikey", "x-api-key", "")
	if _, err := i(context.Background(), nil, &grpc.UnaryServerInfo{}, passHandler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAPIKeyInterceptor_CorrectKey_Passes(t *testing.T) {
	// Mixed-case header config still matches lowercased metadata.
	i := APIKeyInterceptor("apikey", "X-API-Key", "supersecret")
	res, err := callWithKey(t, i, "x-api-key", "supersecret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != "ok" {
		t.Errorf("result: got %v, want ok", res)
	}
}

func TestAPIKeyInterceptor_WrongKey_Unauthenticated(t *testing.T) {
	i := APIKeyInterceptor("apikey", "x-api-key", "supersecret")
	_, err := callWithKey(t, i, "x-api-key", "wrong")
	if code := status.Code(err); code != codes.Unauthenticated {
		t.Errorf("code: got %v, want Unauthenticated", code)
	}
}

func TestAPIKeyInterceptor_MissingHeader_Unauthenticated(t *testing.T) {
	i := APIKeyInterceptor("apikey", "x-api-key", "supersecret")
	ctx := metadata.NewIncomingContext(context.Background(), metadata.MD{})
	_, err := i(ctx, nil, &grpc.UnaryServerInfo{}, passHandler)
	if code := status.Code(err); code != codes.Unauthenticated {
		t.Errorf("code: got %v, want Unauthenticated", code)
	}
}

func TestAPIKeyInterceptor_NoMetadata_Unauthenticated(t *testing.T) {
	i := APIKeyInterceptor("apikey", "x-api-key", "supersecret")
	_, err := i(context.Background(), nil, &grpc.UnaryServerInfo{}, passHandler)
	if code := status.Code(err); code != codes.Unauthenticated {
		t.Errorf("code: got %v, want Unauthenticated", code)
	}
}

// --- HTTP middleware ---

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
})

func serve(h http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_Disabled(t *testing.T) {
	h := Middleware("none", "X-API-Key", "secret")(okHandler)
	if rr := serve(h, "/api/v1/sites", nil); rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
	h = Middleware("apikey", "X-API-Key", "")(okHandler)
	if rr := serve(h, "/api/v1/sites", nil); rr.Code != http.StatusOK {
		t.Errorf("empty key status: got %d, want 200", rr.Code)
	}
}

func TestMiddleware_HeaderKey(t *testing.T) {
	h := Middleware("apikey", "X-API-Key", "secret")(okHandler)

	if rr := serve(h, "/api/v1/sites", map[string]string{"X-API-Key": "secret"}); rr.Code != http.StatusOK {
		t.Errorf("correct key: got %d, want 200", rr.Code)
	}
	if rr := serve(h, "/api/v1/sites", map[string]string{"X-API-Key": "nope"}); rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: got %d, want 401", rr.Code)
	}
	rr := serve(h, "/api/v1/sites", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing key: got %d, want 401", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
}

func TestMiddleware_QueryKey(t *testing.T) {
	h := Middleware("apikey", "X-API-Key", "secret")(okHandler)
	if rr := serve(h, "/ws/callbacks?api_key=secret", nil); rr.Code != http.StatusOK {
		t.Errorf("query key: got %d, want 200", rr.Code)
	}
	if rr := serve(h, "/ws/callbacks?api_key=bad", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("bad query key: got %d, want 401", rr.Code)
	}
}
