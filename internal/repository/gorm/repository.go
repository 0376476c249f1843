package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tcgradar/internal/models"
	"tcgradar/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- users ------------------------------------------------------------------

func (s *Store) UpsertUser(ctx context.Context, item *models.User) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email",
			"is_active",
		}),
	}).Create(item).Error
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertUserProfile(ctx context.Context, item *models.UserProfile) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"country",
			"seller_level",
			"subscription_tier",
			"engagement_score",
			"preferred_platforms",
			"card_categories",
			"min_profit_threshold",
			"min_headache_tier",
			"currency",
			"customs_duty_override",
			"use_forwarder",
			"forwarder_receiving_fee",
			"forwarder_consolidation_fee",
			"insurance_rate",
			"telegram_chat_id",
			"discord_channel_id",
		}),
	}).Create(item).Error
}

func (s *Store) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.UserProfile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListActiveProfiles(ctx context.Context) ([]models.UserProfile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.UserProfile
	err := s.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Joins("JOIN users ON users.id = user_profiles.id").
		Where("users.is_active = ?", true).
		Order("user_profiles.created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- card catalog -----------------------------------------------------------

func (s *Store) UpsertCardMetadata(ctx context.Context, items []models.CardMetadata) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "card_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"set_code",
			"set_name",
			"card_number",
			"regulation_mark",
			"set_release_date",
			"legality_standard",
			"reprint_rumored",
			"tcgplayer_url",
			"cardmarket_url",
			"image_url",
			"updated_at",
		}),
	}).CreateInBatches(items, 200).Error
}

func (s *Store) GetCardMetadata(ctx context.Context, cardID string) (*models.CardMetadata, error) {
	if s == nil || s.db == nil || strings.TrimSpace(cardID) == "" {
		return nil, nil
	}
	var item models.CardMetadata
	err := s.db.WithContext(ctx).Where("card_id = ?", cardID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListCardMetadataByIDs(ctx context.Context, cardIDs []string) ([]models.CardMetadata, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	cardIDs = cleanStrings(cardIDs)
	if len(cardIDs) == 0 {
		return nil, nil
	}
	var items []models.CardMetadata
	if err := s.db.WithContext(ctx).Where("card_id IN ?", cardIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListCardMetadataBySet(ctx context.Context, setCode string) ([]models.CardMetadata, error) {
	if s == nil || s.db == nil || strings.TrimSpace(setCode) == "" {
		return nil, nil
	}
	var items []models.CardMetadata
	err := s.db.WithContext(ctx).
		Where("set_code = ?", strings.TrimSpace(setCode)).
		Order("card_id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListCardIDs(ctx context.Context, limit int) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 500)
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.CardMetadata{}).
		Order("card_id asc").
		Limit(limit).
		Pluck("card_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// --- market prices ----------------------------------------------------------

func (s *Store) SaveMarketPrices(ctx context.Context, rows []models.MarketPrice, recordedAt time.Time) error {
	if s == nil || s.db == nil || len(rows) == 0 {
		return nil
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	rows = dedupeMarketPrices(rows)
	return s.InTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "card_id"}, {Name: "source"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"price_usd",
				"price_eur",
				"condition",
				"seller_id",
				"seller_rating",
				"seller_sales",
				"sales_30d",
				"active_listings",
				"last_updated",
			}),
		}).CreateInBatches(rows, 200).Error; err != nil {
			return err
		}
		return createInBatches(tx, priceHistoryRows(rows, recordedAt), 200)
	})
}

// dedupeMarketPrices keeps the last row per (card_id, source), preserving
// first-seen order. Postgres rejects an upsert batch that touches the same
// row twice, and sources can emit several listings of one card per poll.
func dedupeMarketPrices(rows []models.MarketPrice) []models.MarketPrice {
	out := make([]models.MarketPrice, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		key := row.CardID + "\x00" + row.Source
		if i, ok := index[key]; ok {
			out[i] = row
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}

// priceHistoryRows builds exactly one history row per priced quote.
// Velocity-only rows carry no price and leave no history.
func priceHistoryRows(rows []models.MarketPrice, recordedAt time.Time) []models.PriceHistory {
	history := make([]models.PriceHistory, 0, len(rows))
	for _, row := range rows {
		if row.PriceUSD == nil && row.PriceEUR == nil {
			continue
		}
		history = append(history, models.PriceHistory{
			CardID:     row.CardID,
			Source:     row.Source,
			PriceUSD:   row.PriceUSD,
			PriceEUR:   row.PriceEUR,
			RecordedAt: recordedAt,
		})
	}
	return history
}

func (s *Store) GetMarketPrice(ctx context.Context, cardID, source string) (*models.MarketPrice, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.MarketPrice
	err := s.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Where("source = ?", source).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListPricesByCard(ctx context.Context, cardID string) ([]models.MarketPrice, error) {
	if s == nil || s.db == nil || strings.TrimSpace(cardID) == "" {
		return nil, nil
	}
	var items []models.MarketPrice
	err := s.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("source asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListScanCandidates returns the latest quotes that carry both a USD and a
// EUR price, cheapest EUR side first so the scan sees the best buys early.
// A non-positive limit returns every dual-priced row; the scan must see the
// whole table, only signal output is capped.
func (s *Store) ListScanCandidates(ctx context.Context, limit int) ([]models.MarketPrice, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.MarketPrice{}).
		Where("price_usd IS NOT NULL").
		Where("price_eur IS NOT NULL").
		Order("price_eur asc")
	if limit > 0 {
		query = query.Limit(normalizeLimit(limit, 500))
	}
	var items []models.MarketPrice
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- price history ----------------------------------------------------------

func (s *Store) ListPriceHistory(ctx context.Context, cardID, source string, since time.Time) ([]models.PriceHistory, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.PriceHistory{}).
		Where("card_id = ?", cardID).
		Where("source = ?", source)
	if !since.IsZero() {
		query = query.Where("recorded_at >= ?", since)
	}
	var items []models.PriceHistory
	if err := query.Order("recorded_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeletePriceHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil || before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("recorded_at < ?", before).
		Delete(&models.PriceHistory{})
	return res.RowsAffected, res.Error
}

// --- signals (tenant scoped) ------------------------------------------------

func (s *Store) InsertSignalWithAudit(ctx context.Context, sig *models.Signal, audit *models.SignalAudit) error {
	if s == nil || s.db == nil || sig == nil {
		return nil
	}
	return s.InTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(sig).Error; err != nil {
			return err
		}
		if audit == nil {
			return nil
		}
		audit.SignalID = sig.ID
		return tx.Omit("Signal").Create(audit).Error
	})
}

func (s *Store) ListSignals(ctx context.Context, tenantID uuid.UUID, params repository.ListSignalsParams) ([]models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := signalQuery(s.db.WithContext(ctx), tenantID, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Signal
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSignals(ctx context.Context, tenantID uuid.UUID, params repository.ListSignalsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	err := signalQuery(s.db.WithContext(ctx), tenantID, params).Count(&count).Error
	return count, err
}

func signalQuery(db *gorm.DB, tenantID uuid.UUID, params repository.ListSignalsParams) *gorm.DB {
	query := db.Model(&models.Signal{}).Where("tenant_id = ?", tenantID)
	if params.ActiveOnly {
		query = query.Where("acted_on = ?", false).
			Where("expires_at IS NOT NULL AND expires_at > ?", time.Now().UTC())
	}
	if params.Category != nil && strings.TrimSpace(*params.Category) != "" {
		query = query.Where("category = ?", strings.TrimSpace(*params.Category))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

func (s *Store) GetSignal(ctx context.Context, tenantID, signalID uuid.UUID) (*models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Signal
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("id = ?", signalID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) MarkSignalActedOn(ctx context.Context, tenantID, signalID uuid.UUID) error {
	if s == nil || s.db == nil {
		return nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Where("tenant_id = ?", tenantID).
		Where("id = ?", signalID).
		Update("acted_on", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// --- signals (admin bypass) -------------------------------------------------

func (s *Store) AdminListCascadeCandidates(ctx context.Context, now time.Time, cooldown time.Duration, maxCascades int) ([]models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	var items []models.Signal
	err := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Where("acted_on = ?", false).
		Where("cascade_count < ?", maxCascades).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", now.Add(-cooldown)).
		Order("expires_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) AdminReassignSignal(ctx context.Context, signalID, newTenantID uuid.UUID, expiresAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Where("id = ?", signalID).
		Updates(map[string]any{
			"tenant_id":     newTenantID,
			"cascade_count": gorm.Expr("cascade_count + 1"),
			"expires_at":    expiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) AdminGetSignal(ctx context.Context, signalID uuid.UUID) (*models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Signal
	err := s.db.WithContext(ctx).Where("id = ?", signalID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) AdminDeleteSignalsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil || before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.Signal{})
	return res.RowsAffected, res.Error
}

// --- audits -----------------------------------------------------------------

func (s *Store) ListAuditsBySignal(ctx context.Context, signalID uuid.UUID) ([]models.SignalAudit, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SignalAudit
	err := s.db.WithContext(ctx).
		Where("signal_id = ?", signalID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- synergy ----------------------------------------------------------------

func (s *Store) IncrementSynergy(ctx context.Context, cardA, cardB string, delta int) error {
	if s == nil || s.db == nil {
		return nil
	}
	cardA, cardB = models.NormalizePair(strings.TrimSpace(cardA), strings.TrimSpace(cardB))
	if cardA == "" || cardB == "" || cardA == cardB || delta == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "card_a"}, {Name: "card_b"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":      gorm.Expr("synergy_cooccurrence.count + ?", delta),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&models.SynergyCooccurrence{
		CardA: cardA,
		CardB: cardB,
		Count: delta,
	}).Error
}

func (s *Store) CountSynergyPartners(ctx context.Context, cardID string, minCount int) (int, error) {
	if s == nil || s.db == nil || strings.TrimSpace(cardID) == "" {
		return 0, nil
	}
	if minCount < 1 {
		minCount = 1
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.SynergyCooccurrence{}).
		Where("card_a = ? OR card_b = ?", cardID, cardID).
		Where("count >= ?", minCount).
		Count(&count).Error
	return int(count), err
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func createInBatches[T any](db *gorm.DB, items []T, batchSize int) error {
	if len(items) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		if err := db.CreateInBatches(items[i:end], batchSize).Error; err != nil {
			return err
		}
	}
	return nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, raw := range items {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}
