package pagination_test

import (
	"net/url"
	"testing"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/pagination"
)

func testConfig() pagination.Config {
	return pagination.Config{
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"zero values get defaults", 0, 0, 1, 20},
		{"negative page clamped", -5, 10, 1, 10},
		{"oversized page size capped", 1, 500, 1, 100},
		{"valid values unchanged", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.PageRequest{Page: tt.page, PageSize: tt.pageSize}
			req.Normalize(testConfig())

			if req.Page != tt.wantPage {
				t.Errorf("page: got %d, want %d", req.Page, tt.wantPage)
			}
			if req.PageSize != tt.wantPageSize {
				t.Errorf("page size: got %d, want %d", req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("offset: got %d, want 50", got)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("page_size", "10")
	values.Set("search", "coffee")
	values.Set("sort", "-UploadedAt")

	req := pagination.PageRequestFromQuery(values, testConfig())

	if req.Page != 2 {
		t.Errorf("page: got %d, want 2", req.Page)
	}
	if req.PageSize != 10 {
		t.Errorf("page size: got %d, want 10", req.PageSize)
	}
	if req.Search == nil || *req.Search != "coffee" {
		t.Errorf("search: got %v, want coffee", req.Search)
	}
	if len(req.Sort) != 1 || req.Sort[0].Field != "UploadedAt" || !req.Sort[0].Descending {
		t.Errorf("sort: got %+v", req.Sort)
	}
}

func TestSortFieldsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"string format", `"MerchantName,-UploadedAt"`, 2},
		{"array format", `[{"Field": "MerchantName", "Descending": false}]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s pagination.SortFields
			if err := s.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if len(s) != tt.want {
				t.Errorf("fields: got %d, want %d", len(s), tt.want)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"remainder rounds up", 101, 20, 6},
		{"empty still one page", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("total pages: got %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
		})
	}

	t.Run("nil data becomes empty slice", func(t *testing.T) {
		result := pagination.NewPageResult[string](nil, 0, 1, 20)
		if result.Data == nil {
			t.Error("data: got nil, want empty slice")
		}
	})
}
