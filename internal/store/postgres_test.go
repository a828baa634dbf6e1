// internal/store/postgres_test.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-matching/internal/models"
)

var created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func organizationRows() *sqlmock.Rows {
	return sqlmock.NewRows(organizationColumns)
}

func TestPostgres_GetOrganization(t *testing.T) {
	t.Run("maps nullable columns", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT .+ FROM organizations WHERE id = \$1`).
			WithArgs("c1").
			WillReturnRows(organizationRows().AddRow(
				"c1", "Acme Electrical", "contractor", "ops@acme.test", nil, "1 High St", 51.5, -0.12,
				nil, nil, "{\"Electrical Works\",HVAC}", 4.5, 12,
				80, true, created,
			))

		org, err := s.GetOrganization(context.Background(), "c1")
		require.NoError(t, err)
		require.NotNil(t, org)

		assert.Equal(t, models.OrganizationContractor, org.Type)
		assert.Equal(t, "", org.Phone)
		assert.Equal(t, "1 High St", org.Address)
		assert.Equal(t, []string{"Electrical Works", "HVAC"}, org.Capabilities)
		require.NotNil(t, org.Latitude)
		assert.InDelta(t, 51.5, *org.Latitude, 1e-9)
		require.NotNil(t, org.ReliabilityScore)
		assert.Equal(t, 80, org.Reliability())
		assert.True(t, org.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null reliability and location", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT .+ FROM organizations WHERE id = \$1`).
			WithArgs("c2").
			WillReturnRows(organizationRows().AddRow(
				"c2", "Far Plumbing", "contractor", "hi@far.test", nil, nil, nil, nil,
				nil, nil, nil, nil, nil,
				nil, nil, created,
			))

		org, err := s.GetOrganization(context.Background(), "c2")
		require.NoError(t, err)
		assert.Nil(t, org.Latitude)
		assert.Nil(t, org.ReliabilityScore)
		assert.Equal(t, models.DefaultReliabilityScore, org.Reliability())
		assert.False(t, org.Available)
		assert.Empty(t, org.Capabilities)
	})

	t.Run("missing row returns nil", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT .+ FROM organizations WHERE id = \$1`).
			WithArgs("nope").
			WillReturnRows(organizationRows())

		org, err := s.GetOrganization(context.Background(), "nope")
		assert.NoError(t, err)
		assert.Nil(t, org)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		s, mock := newMockStore(t)
		boom := errors.New("connection reset")

		mock.ExpectQuery(`SELECT .+ FROM organizations`).WillReturnError(boom)

		_, err := s.GetOrganization(context.Background(), "c1")
		assert.ErrorIs(t, err, boom)
	})
}

func TestPostgres_ListAvailableContractors(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		pattern string
	}{
		{"unbounded", 0, `FROM organizations WHERE type = \$1 AND available = \$2 ORDER BY created_at DESC, id ASC$`},
		{"capped", 5, `FROM organizations WHERE type = \$1 AND available = \$2 ORDER BY created_at DESC, id ASC LIMIT 5`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)

			mock.ExpectQuery(tt.pattern).
				WithArgs("contractor", true).
				WillReturnRows(organizationRows().
					AddRow("c1", "A", "contractor", "a@x", nil, nil, 1.0, 2.0, nil, nil, "{HVAC}", nil, 0, 70, true, created).
					AddRow("c2", "B", "contractor", "b@x", nil, nil, nil, nil, nil, nil, "{}", nil, 0, nil, true, created))

			orgs, err := s.ListAvailableContractors(context.Background(), tt.limit)
			require.NoError(t, err)
			require.Len(t, orgs, 2)
			assert.Equal(t, "c1", orgs[0].ID)
			assert.Equal(t, "c2", orgs[1].ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_GetTender(t *testing.T) {
	s, mock := newMockStore(t)
	deadline := created.Add(30 * 24 * time.Hour)

	mock.ExpectQuery(`SELECT .+ FROM tenders WHERE id = \$1`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(tenderColumns).AddRow(
			"t1", "o1", "Rewire office", "Full rewire", 51.5, -0.12, "2 Low Rd",
			[]byte(`{"min":1000,"max":5000}`), "{Electrical}", nil, "{\"Strip out\",Install}", nil,
			deadline, 14, "open", created, created,
		))

	tender, err := s.GetTender(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, tender)

	assert.Equal(t, models.Budget{Min: 1000, Max: 5000}, tender.Budget)
	assert.Equal(t, []string{"Electrical"}, tender.RequiredSkills)
	assert.Nil(t, tender.RequiredCompliance)
	assert.Equal(t, []string{"Strip out", "Install"}, tender.ScopeOfWork)
	assert.Nil(t, tender.StartDate)
	require.NotNil(t, tender.Duration)
	assert.Equal(t, 14, *tender.Duration)
	assert.Equal(t, models.TenderOpen, tender.Status)
	assert.True(t, tender.Deadline.Equal(deadline))
}

func TestPostgres_ListOpenTenders(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`FROM tenders WHERE status = \$1 ORDER BY created_at DESC, id ASC LIMIT 3`).
		WithArgs("open").
		WillReturnRows(sqlmock.NewRows(tenderColumns))

	tenders, err := s.ListOpenTenders(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, tenders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListBidsByTenders(t *testing.T) {
	t.Run("no tenders skips the query", func(t *testing.T) {
		s, mock := newMockStore(t)

		bids, err := s.ListBidsByTenders(context.Background(), nil)
		require.NoError(t, err)
		assert.Nil(t, bids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("batches tender ids", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(`FROM bids WHERE tender_id IN \(\$1,\$2\) ORDER BY submitted_at DESC, id ASC`).
			WithArgs("t1", "t2").
			WillReturnRows(sqlmock.NewRows(bidColumns).
				AddRow("b1", "t1", "c1", 1200.5, 10, nil, "shortlisted", 88, created).
				AddRow("b2", "t2", "c2", 900.0, 7, "{Alice}", "pending", nil, created))

		bids, err := s.ListBidsByTenders(context.Background(), []string{"t1", "t2"})
		require.NoError(t, err)
		require.Len(t, bids, 2)

		assert.Equal(t, models.BidShortlisted, bids[0].Status)
		require.NotNil(t, bids[0].MatchScore)
		assert.Equal(t, 88, *bids[0].MatchScore)
		assert.InDelta(t, 1200.5, bids[0].Price, 1e-9)
		assert.Nil(t, bids[1].MatchScore)
		assert.Equal(t, []string{"Alice"}, bids[1].ProposedCrew)
	})
}

func TestPostgres_ExpiredComplianceHolders(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT DISTINCT entity_id FROM compliance_docs WHERE entity_type = \$1 AND status = \$2 AND entity_id IN \(\$3,\$4\)`).
		WithArgs("organization", "expired", "c1", "c2").
		WillReturnRows(sqlmock.NewRows([]string{"entity_id"}).AddRow("c2"))

	holders, err := s.ExpiredComplianceHolders(context.Background(), []string{"c1", "c2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"c2": true}, holders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateBidMatchScore(t *testing.T) {
	t.Run("updates the row", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectExec(`UPDATE bids SET match_score = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(91, "b1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.UpdateBidMatchScore(context.Background(), "b1", 91))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown bid", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectExec(`UPDATE bids`).
			WithArgs(50, "missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.UpdateBidMatchScore(context.Background(), "missing", 50)
		assert.ErrorIs(t, err, ErrBidNotFound)
	})

	t.Run("exec error", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectExec(`UPDATE bids`).WillReturnError(sql.ErrConnDone)

		err := s.UpdateBidMatchScore(context.Background(), "b1", 50)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})
}
