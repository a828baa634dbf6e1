// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"tender-matching/internal/matching"
	"tender-matching/internal/models"
)

var ErrBidNotFound = errors.New("bid not found")

var (
	organizationColumns = []string{
		"id", "name", "type", "email", "phone", "address", "latitude", "longitude",
		"logo_url", "description", "capabilities", "rating", "review_count",
		"reliability_score", "available", "created_at",
	}
	tenderColumns = []string{
		"id", "organization_id", "title", "description", "latitude", "longitude", "address",
		"budget", "required_skills", "required_compliance", "scope_of_work", "start_date",
		"deadline", "duration", "status", "created_at", "updated_at",
	}
	bidColumns = []string{
		"id", "tender_id", "contractor_id", "price", "duration", "proposed_crew",
		"status", "match_score", "submitted_at",
	}
)

// Postgres reads the marketplace tables. Lists are ordered newest first, then by id.
type Postgres struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

var _ matching.Store = (*Postgres)(nil)

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (p *Postgres) GetTender(ctx context.Context, id string) (*models.Tender, error) {
	query, args, err := p.psql.Select(tenderColumns...).From("tenders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tender query: %w", err)
	}

	t, err := scanTender(p.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tender %s: %w", id, err)
	}
	return t, nil
}

func (p *Postgres) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	query, args, err := p.psql.Select(organizationColumns...).From("organizations").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build organization query: %w", err)
	}

	o, err := scanOrganization(p.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get organization %s: %w", id, err)
	}
	return o, nil
}

func (p *Postgres) GetBid(ctx context.Context, id string) (*models.Bid, error) {
	query, args, err := p.psql.Select(bidColumns...).From("bids").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bid query: %w", err)
	}

	b, err := scanBid(p.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bid %s: %w", id, err)
	}
	return b, nil
}

func (p *Postgres) ListAvailableContractors(ctx context.Context, limit int) ([]models.Organization, error) {
	q := p.psql.Select(organizationColumns...).From("organizations").
		Where(sq.Eq{"type": string(models.OrganizationContractor)}).
		Where(sq.Eq{"available": true}).
		OrderBy("created_at DESC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return p.queryOrganizations(ctx, q)
}

// ListContractors returns every contractor regardless of availability.
func (p *Postgres) ListContractors(ctx context.Context) ([]models.Organization, error) {
	q := p.psql.Select(organizationColumns...).From("organizations").
		Where(sq.Eq{"type": string(models.OrganizationContractor)}).
		OrderBy("created_at DESC", "id ASC")
	return p.queryOrganizations(ctx, q)
}

func (p *Postgres) ListOpenTenders(ctx context.Context, limit int) ([]models.Tender, error) {
	q := p.psql.Select(tenderColumns...).From("tenders").
		Where(sq.Eq{"status": string(models.TenderOpen)}).
		OrderBy("created_at DESC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return p.queryTenders(ctx, q)
}

func (p *Postgres) ListTendersByOrganization(ctx context.Context, orgID string) ([]models.Tender, error) {
	q := p.psql.Select(tenderColumns...).From("tenders").
		Where(sq.Eq{"organization_id": orgID}).
		OrderBy("created_at DESC", "id ASC")
	return p.queryTenders(ctx, q)
}

func (p *Postgres) ListBidsByTenders(ctx context.Context, tenderIDs []string) ([]models.Bid, error) {
	if len(tenderIDs) == 0 {
		return nil, nil
	}
	q := p.psql.Select(bidColumns...).From("bids").
		Where(sq.Eq{"tender_id": tenderIDs}).
		OrderBy("submitted_at DESC", "id ASC")
	return p.queryBids(ctx, q)
}

func (p *Postgres) ListBidsByContractor(ctx context.Context, contractorID string) ([]models.Bid, error) {
	q := p.psql.Select(bidColumns...).From("bids").
		Where(sq.Eq{"contractor_id": contractorID}).
		OrderBy("submitted_at DESC", "id ASC")
	return p.queryBids(ctx, q)
}

func (p *Postgres) ExpiredComplianceHolders(ctx context.Context, orgIDs []string) (map[string]bool, error) {
	holders := make(map[string]bool)
	if len(orgIDs) == 0 {
		return holders, nil
	}

	query, args, err := p.psql.Select("DISTINCT entity_id").From("compliance_docs").
		Where(sq.Eq{"entity_type": "organization"}).
		Where(sq.Eq{"status": string(models.ComplianceExpired)}).
		Where(sq.Eq{"entity_id": orgIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build compliance query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expired compliance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan compliance holder: %w", err)
		}
		holders[id] = true
	}
	return holders, rows.Err()
}

// UpdateBidMatchScore stores the computed score on the bid row.
func (p *Postgres) UpdateBidMatchScore(ctx context.Context, bidID string, score int) error {
	query, args, err := p.psql.Update("bids").
		Set("match_score", score).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": bidID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build bid update: %w", err)
	}

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update bid %s match score: %w", bidID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bid %s match score: %w", bidID, err)
	}
	if n == 0 {
		return ErrBidNotFound
	}
	return nil
}

func (p *Postgres) queryOrganizations(ctx context.Context, q sq.SelectBuilder) ([]models.Organization, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build organizations query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer rows.Close()

	var out []models.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (p *Postgres) queryTenders(ctx context.Context, q sq.SelectBuilder) ([]models.Tender, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tenders query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tenders: %w", err)
	}
	defer rows.Close()

	var out []models.Tender
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tender: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (p *Postgres) queryBids(ctx context.Context, q sq.SelectBuilder) ([]models.Bid, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bids query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bids: %w", err)
	}
	defer rows.Close()

	var out []models.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	var (
		o                                    models.Organization
		orgType                              string
		phone, address, logoURL, description sql.NullString
		lat, lng, rating                     sql.NullFloat64
		reviewCount, reliability             sql.NullInt64
		available                            sql.NullBool
		capabilities                         pq.StringArray
	)
	if err := row.Scan(
		&o.ID, &o.Name, &orgType, &o.Email, &phone, &address, &lat, &lng,
		&logoURL, &description, &capabilities, &rating, &reviewCount,
		&reliability, &available, &o.CreatedAt,
	); err != nil {
		return nil, err
	}

	o.Type = models.OrganizationType(orgType)
	o.Phone = phone.String
	o.Address = address.String
	o.LogoURL = logoURL.String
	o.Description = description.String
	o.Capabilities = []string(capabilities)
	o.Latitude = nullFloat(lat)
	o.Longitude = nullFloat(lng)
	o.Rating = nullFloat(rating)
	o.ReviewCount = int(reviewCount.Int64)
	if reliability.Valid {
		v := int(reliability.Int64)
		o.ReliabilityScore = &v
	}
	o.Available = available.Valid && available.Bool
	return &o, nil
}

func scanTender(row rowScanner) (*models.Tender, error) {
	var (
		t                         models.Tender
		status                    string
		budget                    []byte
		skills, compliance, scope pq.StringArray
		startDate                 sql.NullTime
		duration                  sql.NullInt64
	)
	if err := row.Scan(
		&t.ID, &t.OrganizationID, &t.Title, &t.Description, &t.Latitude, &t.Longitude, &t.Address,
		&budget, &skills, &compliance, &scope, &startDate,
		&t.Deadline, &duration, &status, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(budget) > 0 {
		if err := json.Unmarshal(budget, &t.Budget); err != nil {
			return nil, fmt.Errorf("decode budget of tender %s: %w", t.ID, err)
		}
	}
	t.Status = models.TenderStatus(status)
	t.RequiredSkills = []string(skills)
	t.RequiredCompliance = []string(compliance)
	t.ScopeOfWork = []string(scope)
	if startDate.Valid {
		t.StartDate = &startDate.Time
	}
	if duration.Valid {
		d := int(duration.Int64)
		t.Duration = &d
	}
	return &t, nil
}

func scanBid(row rowScanner) (*models.Bid, error) {
	var (
		b      models.Bid
		status string
		crew   pq.StringArray
		score  sql.NullInt64
	)
	if err := row.Scan(
		&b.ID, &b.TenderID, &b.ContractorID, &b.Price, &b.Duration, &crew,
		&status, &score, &b.SubmittedAt,
	); err != nil {
		return nil, err
	}

	b.Status = models.BidStatus(status)
	b.ProposedCrew = []string(crew)
	if score.Valid {
		s := int(score.Int64)
		b.MatchScore = &s
	}
	return &b, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
