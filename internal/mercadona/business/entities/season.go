package entities

import (
	"context"
	"fmt"
)

const seasonEndpoint = "/api/home/seasons/%s/"

// Season is a seasonal promotion from the home layout: a title plus the
// promoted items. A single fetch populates everything; there is no
// partial-completeness tier.
type Season struct {
	item remoteItem
}

func NewSeason(id string, bound Context, api Fetcher) *Season {
	return &Season{
		item: newRemoteItem(id, fmt.Sprintf(seasonEndpoint, id), bound, api, DefaultRetryPolicy, nil),
	}
}

// WithRetryPolicy overrides the rate-limit retry policy.
func (s *Season) WithRetryPolicy(retry RetryPolicy) *Season {
	s.item.retry = retry
	return s
}

func (s *Season) ID() string {
	return s.item.id
}

func (s *Season) Exists(ctx context.Context) bool {
	return s.item.exists(ctx)
}

func (s *Season) Title(ctx context.Context) string {
	s.item.ensureLoaded(ctx)
	return s.item.snapshot().String("title")
}

// Products maps the season's items to Product instances sharing the
// season's Context.
func (s *Season) Products(ctx context.Context) []*Product {
	s.item.ensureLoaded(ctx)

	items := s.item.snapshot().List("items")
	products := make([]*Product, 0, len(items))
	for _, item := range items {
		product, err := NewProductFromPayload(item, s.item.bound, s.item.api)
		if err != nil {
			s.item.log.Log("Skipping item without id in season %s", s.item.id)
			continue
		}
		products = append(products, product)
	}
	return products
}
