package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/repository"
)

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, a *domain.Activity) error {
	logger.EnterMethod("activityRepository.Create", "walletID", a.WalletID, "type", a.Type)

	attrs, err := json.Marshal(a.Attributes)
	if err != nil {
		logger.ExitMethodWithError("activityRepository.Create", err, "reason", "failed to marshal attributes")
		return err
	}

	query := `INSERT INTO wallet_activities (id, wallet_id, type, actor_member_id, message, attributes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	logger.DatabaseCall("INSERT", "wallet_activities", "walletID", a.WalletID, "activityID", a.ID)

	_, err = r.db.ExecContext(ctx, query, a.ID, a.WalletID, string(a.Type), a.ActorMemberID, a.Message, attrs, a.CreatedAt.UTC())
	logger.DatabaseResult("INSERT", 1, err, "activityID", a.ID)

	if err != nil {
		logger.ExitMethodWithError("activityRepository.Create", err, "activityID", a.ID)
		return err
	}
	logger.ExitMethod("activityRepository.Create", "activityID", a.ID)
	return nil
}

func (r *activityRepository) ListByWallet(ctx context.Context, walletID string, types []domain.ActivityType, limit, offset int32) ([]domain.Activity, int32, error) {
	var typeFilter []string
	for _, t := range types {
		typeFilter = append(typeFilter, string(t))
	}

	var count int32
	countQuery := `SELECT count(*) FROM wallet_activities
	               WHERE wallet_id = $1 AND ($2::text[] IS NULL OR type = ANY($2))`
	if err := r.db.QueryRowContext(ctx, countQuery, walletID, pq.Array(typeFilter)).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, wallet_id, type, actor_member_id, message, attributes, created_at
	          FROM wallet_activities
	          WHERE wallet_id = $1 AND ($2::text[] IS NULL OR type = ANY($2))
	          ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`
	logger.DatabaseCall("SELECT", "wallet_activities", "walletID", walletID, "limit", limit, "offset", offset)

	rows, err := r.db.QueryContext(ctx, query, walletID, pq.Array(typeFilter), limit, offset)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "walletID", walletID)
		return nil, 0, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var a domain.Activity
		var activityType string
		var attrs []byte
		var createdAt time.Time
		if err := rows.Scan(&a.ID, &a.WalletID, &activityType, &a.ActorMemberID, &a.Message, &attrs, &createdAt); err != nil {
			return nil, 0, err
		}
		a.Type = domain.ActivityType(activityType)
		a.CreatedAt = createdAt.UTC()
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &a.Attributes); err != nil {
				return nil, 0, err
			}
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	logger.DatabaseResult("SELECT", int64(len(activities)), nil, "walletID", walletID)
	return activities, count, nil
}
