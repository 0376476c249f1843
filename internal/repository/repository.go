package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tcgradar/internal/models"
)

// Repository is the persistence boundary for the radar. Every signal read
// takes a tenant ID and is predicated on it inside the implementation; the
// Admin* methods are the only tenant bypass and exist for the cascade sweep
// and operational tooling.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Users and delivery profiles.
	UpsertUser(ctx context.Context, item *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpsertUserProfile(ctx context.Context, item *models.UserProfile) error
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	ListActiveProfiles(ctx context.Context) ([]models.UserProfile, error)

	// Card catalog.
	UpsertCardMetadata(ctx context.Context, items []models.CardMetadata) error
	GetCardMetadata(ctx context.Context, cardID string) (*models.CardMetadata, error)
	ListCardMetadataByIDs(ctx context.Context, cardIDs []string) ([]models.CardMetadata, error)
	ListCardMetadataBySet(ctx context.Context, setCode string) ([]models.CardMetadata, error)
	ListCardIDs(ctx context.Context, limit int) ([]string, error)

	// Market prices. SaveMarketPrices upserts the latest rows and appends
	// one history row per quote in the same transaction.
	SaveMarketPrices(ctx context.Context, rows []models.MarketPrice, recordedAt time.Time) error
	GetMarketPrice(ctx context.Context, cardID, source string) (*models.MarketPrice, error)
	ListPricesByCard(ctx context.Context, cardID string) ([]models.MarketPrice, error)
	ListScanCandidates(ctx context.Context, limit int) ([]models.MarketPrice, error)

	// Price history (trend window reads, retention pruning).
	ListPriceHistory(ctx context.Context, cardID, source string, since time.Time) ([]models.PriceHistory, error)
	DeletePriceHistoryBefore(ctx context.Context, before time.Time) (int64, error)

	// Signals, tenant scoped.
	InsertSignalWithAudit(ctx context.Context, sig *models.Signal, audit *models.SignalAudit) error
	ListSignals(ctx context.Context, tenantID uuid.UUID, params ListSignalsParams) ([]models.Signal, error)
	CountSignals(ctx context.Context, tenantID uuid.UUID, params ListSignalsParams) (int64, error)
	GetSignal(ctx context.Context, tenantID, signalID uuid.UUID) (*models.Signal, error)
	MarkSignalActedOn(ctx context.Context, tenantID, signalID uuid.UUID) error

	// Admin bypass: cascade sweep and cleanup. No tenant predicate.
	AdminListCascadeCandidates(ctx context.Context, now time.Time, cooldown time.Duration, maxCascades int) ([]models.Signal, error)
	AdminReassignSignal(ctx context.Context, signalID, newTenantID uuid.UUID, expiresAt time.Time) error
	AdminGetSignal(ctx context.Context, signalID uuid.UUID) (*models.Signal, error)
	AdminDeleteSignalsBefore(ctx context.Context, before time.Time) (int64, error)

	// Audit trail (admin surface, append-only).
	ListAuditsBySignal(ctx context.Context, signalID uuid.UUID) ([]models.SignalAudit, error)

	// Synergy co-occurrence for bundle scoring.
	IncrementSynergy(ctx context.Context, cardA, cardB string, delta int) error
	CountSynergyPartners(ctx context.Context, cardID string, minCount int) (int, error)
}

type ListSignalsParams struct {
	Limit      int
	Offset     int
	ActiveOnly bool
	Category   *string
	Since      *time.Time
	OrderBy    string
	Asc        *bool
}
