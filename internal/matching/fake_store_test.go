// internal/matching/fake_store_test.go
package matching

import (
	"context"

	"tender-matching/internal/models"
)

// memStore is an in-memory Store; slices keep insertion order as the store order.
type memStore struct {
	tenders       []models.Tender
	organizations []models.Organization
	bids          []models.Bid
	expired       map[string]bool

	err           error
	poolLimitSeen int
	bidQueries    int
}

func (m *memStore) GetTender(_ context.Context, id string) (*models.Tender, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.tenders {
		if m.tenders[i].ID == id {
			t := m.tenders[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetOrganization(_ context.Context, id string) (*models.Organization, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.organizations {
		if m.organizations[i].ID == id {
			o := m.organizations[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetBid(_ context.Context, id string) (*models.Bid, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.bids {
		if m.bids[i].ID == id {
			b := m.bids[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListAvailableContractors(_ context.Context, limit int) ([]models.Organization, error) {
	m.poolLimitSeen = limit
	var out []models.Organization
	for _, o := range m.organizations {
		if o.Type == models.OrganizationContractor && o.Available {
			out = append(out, o)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListOpenTenders(_ context.Context, limit int) ([]models.Tender, error) {
	m.poolLimitSeen = limit
	var out []models.Tender
	for _, t := range m.tenders {
		if t.Status == models.TenderOpen {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListTendersByOrganization(_ context.Context, orgID string) ([]models.Tender, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Tender
	for _, t := range m.tenders {
		if t.OrganizationID == orgID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) ListBidsByTenders(_ context.Context, tenderIDs []string) ([]models.Bid, error) {
	m.bidQueries++
	ids := make(map[string]bool, len(tenderIDs))
	for _, id := range tenderIDs {
		ids[id] = true
	}
	var out []models.Bid
	for _, b := range m.bids {
		if ids[b.TenderID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListBidsByContractor(_ context.Context, contractorID string) ([]models.Bid, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Bid
	for _, b := range m.bids {
		if b.ContractorID == contractorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ExpiredComplianceHolders(_ context.Context, orgIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, id := range orgIDs {
		if m.expired[id] {
			out[id] = true
		}
	}
	return out, nil
}

func ptr[T any](v T) *T {
	return &v
}
