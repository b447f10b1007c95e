package woo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/config"
)

// testConfig 返回指向测试服务器的快速配置
func testConfig(baseURL string) config.WooConfig {
	return config.WooConfig{
		BaseURL:        baseURL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		PerPage:        50,
		MaxPages:       10,
		PagePause:      time.Millisecond,
		PageTimeout:    2 * time.Second,
		MaxRetries:     2,
		RetryBackoff:   time.Millisecond,
	}
}

// pagedHandler 按页返回商品记录：total条记录按perPage分页，之后返回空页
func pagedHandler(t *testing.T, total, perPage int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("consumer_key") == "" || q.Get("consumer_secret") == "" {
			t.Error("Expected credentials in query")
		}
		if q.Get("status") != "publish" || q.Get("stock_status") != "instock" {
			t.Error("Expected publish/instock filters in query")
		}

		page, _ := strconv.Atoi(q.Get("page"))
		start := (page - 1) * perPage
		var records []RawProduct
		for i := start; i < start+perPage && i < total; i++ {
			records = append(records, RawProduct{
				ID:    int64(i + 1),
				Name:  fmt.Sprintf("Оправа %d", i+1),
				Price: json.RawMessage(`"1000"`),
			})
		}
		if records == nil {
			records = []RawProduct{}
		}
		_ = json.NewEncoder(w).Encode(records)
	}
}

func TestClient_FetchCategory_MultiplePages(t *testing.T) {
	var pages int32
	inner := pagedHandler(t, 120, 50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pages, 1)
		inner(w, r)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())

	products, err := client.FetchCategory(context.Background(), "104")
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}
	if len(products) != 120 {
		t.Errorf("Expected 120 products, got %d", len(products))
	}
	// 50+50+20：第3页不满一页，第4页请求不会发出
	if got := atomic.LoadInt32(&pages); got != 3 {
		t.Errorf("Expected 3 page requests, got %d", got)
	}
	// 到达顺序保持
	if products[0].ID != 1 || products[119].ID != 120 {
		t.Errorf("Expected arrival order preserved, got first=%d last=%d", products[0].ID, products[119].ID)
	}
}

func TestClient_FetchCategory_StopsOnEmptyPage(t *testing.T) {
	var pages int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pages, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page >= 2 {
			_, _ = w.Write([]byte("[]"))
			return
		}
		pagedHandler(t, 50, 50)(w, r)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())

	products, err := client.FetchCategory(context.Background(), "104")
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}
	if len(products) != 50 {
		t.Errorf("Expected 50 products, got %d", len(products))
	}
	if got := atomic.LoadInt32(&pages); got != 2 {
		t.Errorf("Expected fetch to stop after empty page 2, got %d requests", got)
	}
}

func TestClient_FetchCategory_DisabledWithoutCredentials(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.ConsumerKey = ""
	cfg.ConsumerSecret = ""
	client := NewClient(cfg, zap.NewNop())

	if client.Enabled() {
		t.Error("Expected client to be disabled without credentials")
	}

	products, err := client.FetchCategory(context.Background(), "104")
	if err != nil {
		t.Fatalf("Expected soft-disabled fetch to succeed, got %v", err)
	}
	if len(products) != 0 {
		t.Errorf("Expected empty result, got %d products", len(products))
	}
	if products == nil {
		t.Error("Expected empty slice, not nil")
	}
	if atomic.LoadInt32(&requests) != 0 {
		t.Error("Expected no network requests in disabled mode")
	}
}

func TestClient_FetchCategory_RetriesWholeSequence(t *testing.T) {
	// 首次尝试第2页失败，第二次尝试全部成功
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 1 {
			atomic.AddInt32(&attempts, 1)
		}
		if page == 2 && atomic.LoadInt32(&attempts) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		pagedHandler(t, 60, 50)(w, r)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())

	products, err := client.FetchCategory(context.Background(), "104")
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}
	if len(products) != 60 {
		t.Errorf("Expected 60 products after retry, got %d", len(products))
	}
	// 重试从第1页重新开始
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("Expected 2 full attempts, got %d", got)
	}
}

func TestClient_FetchCategory_ExhaustedRetries(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())

	_, err := client.FetchCategory(context.Background(), "104")
	if err == nil {
		t.Fatal("Expected error after exhausted retries")
	}

	var fetchErr *CatalogFetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *CatalogFetchError, got %T", err)
	}
	if fetchErr.CategoryID != "104" {
		t.Errorf("Expected category 104 in error, got %s", fetchErr.CategoryID)
	}
	// MaxRetries=2 → 共3次尝试
	if fetchErr.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", fetchErr.Attempts)
	}
	if got := atomic.LoadInt32(&requests); got != 3 {
		t.Errorf("Expected 3 page-1 requests, got %d", got)
	}
}

func TestClient_FetchCategory_ContextCancelDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RetryBackoff = time.Minute
	client := NewClient(cfg, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchCategory(ctx, "104")
	if err == nil {
		t.Fatal("Expected error on context cancellation")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context deadline in error chain, got %v", err)
	}
}
