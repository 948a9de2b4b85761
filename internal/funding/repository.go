package funding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equiseed/equiseed/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CountRounds(ctx context.Context, userID int64) (int, error)
	CreateRound(ctx context.Context, round FundingRound) (int64, error)
	CreateDetail(ctx context.Context, detail FundingDetail) (int64, error)
	CreateInvestor(ctx context.Context, investor FundingInvestor) (int64, error)
	CreateDocument(ctx context.Context, doc FundingDocument) (int64, error)
	GetRoundForUpdate(ctx context.Context, id int64) (FundingRound, error)
	GetDetail(ctx context.Context, roundID int64) (*FundingDetail, error)
	SumInvestors(ctx context.Context, detailID int64) (totalAmount, totalEquity float64, err error)
	UpdateDetailEquity(ctx context.Context, detailID int64, equity float64) error
	UpdateRoundFunding(ctx context.Context, roundID int64, fundingRaised float64) error
	UpdateRoundState(ctx context.Context, round FundingRound) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const roundColumns = `id, user_id, round_type, sequence_number, form_type, approval_status,
is_active, raised_on_platform, current_valuation, shares_diluted, target_amount,
minimum_investment, funding_raised, round_opening_date, round_duration, grace_period,
preferred_exit_strategy, expected_exit_time, expected_returns, additional_comments,
admin_rejection_message, created_at, updated_at`

func scanRound(row pgx.Row) (FundingRound, error) {
	var round FundingRound
	var exitStrategy []byte
	err := row.Scan(
		&round.ID, &round.UserID, &round.RoundType, &round.SequenceNumber, &round.FormType,
		&round.ApprovalStatus, &round.IsActive, &round.RaisedOnPlatform, &round.CurrentValuation,
		&round.SharesDiluted, &round.TargetAmount, &round.MinimumInvestment, &round.FundingRaised,
		&round.RoundOpeningDate, &round.RoundDuration, &round.GracePeriod, &exitStrategy,
		&round.ExpectedExitTime, &round.ExpectedReturns, &round.Comments,
		&round.RejectionMessage, &round.CreatedAt, &round.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FundingRound{}, ErrNotFound
		}
		return FundingRound{}, err
	}
	if len(exitStrategy) > 0 {
		_ = json.Unmarshal(exitStrategy, &round.ExitStrategy)
	}
	return round, nil
}

// GetRound fetches a round by ID.
func (r *Repository) GetRound(ctx context.Context, id int64) (FundingRound, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roundColumns+` FROM funding_rounds WHERE id = $1`, id)
	return scanRound(row)
}

// GetDetail fetches the detail attached to a round, nil when absent.
func (r *Repository) GetDetail(ctx context.Context, roundID int64) (*FundingDetail, error) {
	return getDetail(ctx, r.pool, roundID)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getDetail(ctx context.Context, q queryer, roundID int64) (*FundingDetail, error) {
	var detail FundingDetail
	err := q.QueryRow(ctx, `SELECT id, funding_round_id, valuation_amount, funding_date,
has_not_raised_before, equity_diluted FROM funding_details WHERE funding_round_id = $1`, roundID).
		Scan(&detail.ID, &detail.FundingRoundID, &detail.ValuationAmount, &detail.FundingDate,
			&detail.HasNotRaisedBefore, &detail.EquityDiluted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &detail, nil
}

// ListInvestors returns commitments under a detail, oldest first.
func (r *Repository) ListInvestors(ctx context.Context, detailID int64) ([]FundingInvestor, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, funding_detail_id, name, amount_invested,
equity_percentage, commitment_date, grace_period_days, grace_period_end, status, created_at
FROM funding_investors WHERE funding_detail_id = $1 ORDER BY created_at`, detailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var investors []FundingInvestor
	for rows.Next() {
		var inv FundingInvestor
		if err := rows.Scan(&inv.ID, &inv.FundingDetailID, &inv.Name, &inv.AmountInvested,
			&inv.EquityPercentage, &inv.CommitmentDate, &inv.GracePeriodDays, &inv.GracePeriodEnd,
			&inv.Status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		investors = append(investors, inv)
	}
	return investors, rows.Err()
}

// ListRounds returns all of a founder's rounds ordered by sequence number.
func (r *Repository) ListRounds(ctx context.Context, userID int64) ([]FundingRound, error) {
	return r.listRounds(ctx, `SELECT `+roundColumns+` FROM funding_rounds
WHERE user_id = $1 ORDER BY sequence_number`, userID)
}

// ListNewFormRounds returns platform-raised rounds ordered by sequence number.
func (r *Repository) ListNewFormRounds(ctx context.Context, userID int64) ([]FundingRound, error) {
	return r.listRounds(ctx, `SELECT `+roundColumns+` FROM funding_rounds
WHERE user_id = $1 AND form_type = 'new' ORDER BY sequence_number`, userID)
}

func (r *Repository) listRounds(ctx context.Context, query string, args ...any) ([]FundingRound, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rounds []FundingRound
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

// ListDilutionHistory joins rounds with their detail dilution percentages in
// sequence order for the cumulative share calculation.
func (r *Repository) ListDilutionHistory(ctx context.Context, userID int64) ([]RoundDilution, error) {
	rows, err := r.pool.Query(ctx, `SELECT fr.sequence_number, COALESCE(fd.equity_diluted, 0)
FROM funding_rounds fr
LEFT JOIN funding_details fd ON fd.funding_round_id = fr.id
WHERE fr.user_id = $1 ORDER BY fr.sequence_number`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []RoundDilution
	for rows.Next() {
		var entry RoundDilution
		if err := rows.Scan(&entry.SequenceNumber, &entry.EquityDiluted); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// ListReviewRounds returns pending, approved and rejected rounds with the
// owning company name, newest first.
func (r *Repository) ListReviewRounds(ctx context.Context) ([]ReviewRound, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+prefixedRoundColumns("fr")+`, u.company_name
FROM funding_rounds fr
JOIN users u ON u.id = fr.user_id
WHERE fr.approval_status IN ('PENDING', 'APPROVED', 'REJECTED')
ORDER BY fr.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []ReviewRound
	for rows.Next() {
		var round FundingRound
		var exitStrategy []byte
		var companyName string
		if err := rows.Scan(
			&round.ID, &round.UserID, &round.RoundType, &round.SequenceNumber, &round.FormType,
			&round.ApprovalStatus, &round.IsActive, &round.RaisedOnPlatform, &round.CurrentValuation,
			&round.SharesDiluted, &round.TargetAmount, &round.MinimumInvestment, &round.FundingRaised,
			&round.RoundOpeningDate, &round.RoundDuration, &round.GracePeriod, &exitStrategy,
			&round.ExpectedExitTime, &round.ExpectedReturns, &round.Comments,
			&round.RejectionMessage, &round.CreatedAt, &round.UpdatedAt, &companyName,
		); err != nil {
			return nil, err
		}
		if len(exitStrategy) > 0 {
			_ = json.Unmarshal(exitStrategy, &round.ExitStrategy)
		}
		entries = append(entries, ReviewRound{Round: round, CompanyName: companyName})
	}
	return entries, rows.Err()
}

// ListExpiredActiveRounds returns active rounds whose closing window lapsed.
func (r *Repository) ListExpiredActiveRounds(ctx context.Context) ([]FundingRound, error) {
	return r.listRounds(ctx, `SELECT `+roundColumns+` FROM funding_rounds
WHERE approval_status = 'ACTIVE'
AND round_opening_date + make_interval(days => round_duration) < NOW()
ORDER BY id`)
}

// ConfirmExpiredInvestors settles commitments whose grace period lapsed,
// returning the number of rows updated.
func (r *Repository) ConfirmExpiredInvestors(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE funding_investors SET status = $1
WHERE status = $2 AND grace_period_end < NOW()`, InvestorStatusConfirmed, InvestorStatusInvested)
	if err != nil {
		return 0, fmt.Errorf("funding: confirm expired investors: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Transactional operations

func (t *txRepo) CountRounds(ctx context.Context, userID int64) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM funding_rounds WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func (t *txRepo) CreateRound(ctx context.Context, round FundingRound) (int64, error) {
	exitStrategy, err := json.Marshal(round.ExitStrategy)
	if err != nil {
		return 0, err
	}
	var id int64
	err = t.tx.QueryRow(ctx, `INSERT INTO funding_rounds (user_id, round_type, sequence_number,
form_type, approval_status, is_active, raised_on_platform, current_valuation, shares_diluted,
target_amount, minimum_investment, funding_raised, round_opening_date, round_duration,
grace_period, preferred_exit_strategy, expected_exit_time, expected_returns,
additional_comments, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
RETURNING id`,
		round.UserID, round.RoundType, round.SequenceNumber, round.FormType, round.ApprovalStatus,
		round.IsActive, round.RaisedOnPlatform, round.CurrentValuation, round.SharesDiluted,
		round.TargetAmount, round.MinimumInvestment, round.FundingRaised, round.RoundOpeningDate,
		round.RoundDuration, round.GracePeriod, exitStrategy, round.ExpectedExitTime,
		round.ExpectedReturns, round.Comments,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateRound
		}
		return 0, err
	}
	return id, nil
}

func (t *txRepo) CreateDetail(ctx context.Context, detail FundingDetail) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO funding_details (funding_round_id, valuation_amount,
funding_date, has_not_raised_before, equity_diluted, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`,
		detail.FundingRoundID, detail.ValuationAmount, detail.FundingDate,
		detail.HasNotRaisedBefore, detail.EquityDiluted,
	).Scan(&id)
	return id, err
}

func (t *txRepo) CreateInvestor(ctx context.Context, investor FundingInvestor) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO funding_investors (funding_detail_id, name,
amount_invested, equity_percentage, commitment_date, grace_period_days, grace_period_end,
status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id`,
		investor.FundingDetailID, investor.Name, investor.AmountInvested, investor.EquityPercentage,
		investor.CommitmentDate, investor.GracePeriodDays, investor.GracePeriodEnd, investor.Status,
	).Scan(&id)
	return id, err
}

func (t *txRepo) CreateDocument(ctx context.Context, doc FundingDocument) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO funding_documents (funding_detail_id, file_path,
original_name, created_at) VALUES ($1, $2, $3, NOW()) RETURNING id`,
		doc.FundingDetailID, doc.FilePath, doc.OriginalName,
	).Scan(&id)
	return id, err
}

// GetRoundForUpdate locks the round row for the duration of the transaction
// so the recompute-then-guard sequence is atomic against other writers.
func (t *txRepo) GetRoundForUpdate(ctx context.Context, id int64) (FundingRound, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+roundColumns+` FROM funding_rounds WHERE id = $1 FOR UPDATE`, id)
	return scanRound(row)
}

func (t *txRepo) GetDetail(ctx context.Context, roundID int64) (*FundingDetail, error) {
	return getDetail(ctx, t.tx, roundID)
}

func (t *txRepo) SumInvestors(ctx context.Context, detailID int64) (float64, float64, error) {
	var totalAmount, totalEquity float64
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount_invested), 0), COALESCE(SUM(equity_percentage), 0)
FROM funding_investors WHERE funding_detail_id = $1`, detailID).Scan(&totalAmount, &totalEquity)
	return totalAmount, totalEquity, err
}

func (t *txRepo) UpdateDetailEquity(ctx context.Context, detailID int64, equity float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE funding_details SET equity_diluted = $2, updated_at = NOW()
WHERE id = $1`, detailID, equity)
	return err
}

func (t *txRepo) UpdateRoundFunding(ctx context.Context, roundID int64, fundingRaised float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE funding_rounds SET funding_raised = $2, updated_at = NOW()
WHERE id = $1`, roundID, fundingRaised)
	return err
}

func (t *txRepo) UpdateRoundState(ctx context.Context, round FundingRound) error {
	_, err := t.tx.Exec(ctx, `UPDATE funding_rounds SET approval_status = $2, is_active = $3,
shares_diluted = $4, admin_rejection_message = $5, updated_at = NOW() WHERE id = $1`,
		round.ID, round.ApprovalStatus, round.IsActive, round.SharesDiluted, round.RejectionMessage)
	return err
}

func prefixedRoundColumns(alias string) string {
	return alias + ".id, " + alias + ".user_id, " + alias + ".round_type, " + alias + ".sequence_number, " +
		alias + ".form_type, " + alias + ".approval_status, " + alias + ".is_active, " +
		alias + ".raised_on_platform, " + alias + ".current_valuation, " + alias + ".shares_diluted, " +
		alias + ".target_amount, " + alias + ".minimum_investment, " + alias + ".funding_raised, " +
		alias + ".round_opening_date, " + alias + ".round_duration, " + alias + ".grace_period, " +
		alias + ".preferred_exit_strategy, " + alias + ".expected_exit_time, " + alias + ".expected_returns, " +
		alias + ".additional_comments, " + alias + ".admin_rejection_message, " + alias + ".created_at, " +
		alias + ".updated_at"
}
