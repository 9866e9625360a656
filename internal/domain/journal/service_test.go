package journal

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

type captureRepo struct {
	got Filter
}

func (r *captureRepo) FindByFilter(ctx context.Context, filter Filter) ([]*Entry, int64, error) {
	r.got = filter
	return nil, 0, nil
}

func TestListClampsPagination(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, 20, 0},
		{"negative", -5, -3, 20, 0},
		{"in range", 50, 10, 50, 10},
		{"over cap", 500, 0, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &captureRepo{}
			svc := NewService(repo, zerolog.Nop())
			if _, _, err := svc.List(context.Background(), Filter{Limit: tt.limit, Offset: tt.offset}); err != nil {
				t.Fatalf("list: %v", err)
			}
			if repo.got.Limit != tt.wantLimit || repo.got.Offset != tt.wantOffset {
				t.Errorf("filter = limit %d offset %d, want limit %d offset %d",
					repo.got.Limit, repo.got.Offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
