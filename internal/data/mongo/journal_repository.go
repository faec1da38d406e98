// Package mongo stores the journal read model projected from voucher events.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/journal"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// JournalCollectionName is the name of the journal collection in MongoDB
	JournalCollectionName = "journal_lines"
)

// lineDocument is keyed by entry id, so replaying a voucher overwrites its own lines
type lineDocument struct {
	EntryID            int64                `bson:"_id"`
	VoucherID          int64                `bson:"voucher_id"`
	VoucherNumber      string               `bson:"voucher_number,omitempty"`
	AccountID          int64                `bson:"account_id"`
	Date               time.Time            `bson:"date"`
	Type               string               `bson:"type"`
	Amount             primitive.Decimal128 `bson:"amount"`
	Description        string               `bson:"description,omitempty"`
	VoucherDescription string               `bson:"voucher_description"`
	CorrelationID      string               `bson:"correlation_id,omitempty"`
	PostedAt           time.Time            `bson:"posted_at"`
	ProjectedAt        time.Time            `bson:"projected_at"`
}

func toDocument(l journal.Line) (lineDocument, error) {
	amount, err := primitive.ParseDecimal128(l.Amount.String())
	if err != nil {
		return lineDocument{}, fmt.Errorf("entry %d: invalid amount %s: %w", l.EntryID, l.Amount, err)
	}
	return lineDocument{
		EntryID:            l.EntryID,
		VoucherID:          l.VoucherID,
		VoucherNumber:      l.VoucherNumber,
		AccountID:          l.AccountID,
		Date:               l.Date,
		Type:               l.Type,
		Amount:             amount,
		Description:        l.Description,
		VoucherDescription: l.VoucherDescription,
		CorrelationID:      l.CorrelationID,
		PostedAt:           l.PostedAt,
		ProjectedAt:        l.ProjectedAt,
	}, nil
}

func (d lineDocument) line() (journal.Line, error) {
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return journal.Line{}, fmt.Errorf("entry %d: invalid stored amount %s: %w", d.EntryID, d.Amount, err)
	}
	return journal.Line{
		EntryID:            d.EntryID,
		VoucherID:          d.VoucherID,
		VoucherNumber:      d.VoucherNumber,
		AccountID:          d.AccountID,
		Date:               d.Date.UTC(),
		Type:               d.Type,
		Amount:             amount,
		Description:        d.Description,
		VoucherDescription: d.VoucherDescription,
		CorrelationID:      d.CorrelationID,
		PostedAt:           d.PostedAt.UTC(),
		ProjectedAt:        d.ProjectedAt.UTC(),
	}, nil
}

// JournalRepository implements the journal.Repository interface for MongoDB
type JournalRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

var _ journal.Repository = (*JournalRepository)(nil)

// NewJournalRepository creates a new MongoDB journal repository
func NewJournalRepository(logger *slog.Logger, db *mongo.Database) *JournalRepository {
	return &JournalRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the indexes backing account history lookups
func (r *JournalRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(JournalCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "date", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "voucher_id", Value: 1}}},
	})
	if err != nil {
		r.logger.Error("Failed to create journal indexes", "error", err)
		return fmt.Errorf("failed to create journal indexes: %w", err)
	}
	return nil
}

// ReplaceVoucher upserts every line of the voucher and drops stale ones
func (r *JournalRepository) ReplaceVoucher(ctx context.Context, voucherID int64, lines []journal.Line) error {
	collection := r.db.Collection(JournalCollectionName)

	entryIDs := make([]int64, 0, len(lines))
	models := make([]mongo.WriteModel, 0, len(lines))
	for _, l := range lines {
		doc, err := toDocument(l)
		if err != nil {
			return err
		}
		entryIDs = append(entryIDs, doc.EntryID)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.EntryID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	if len(models) > 0 {
		if _, err := collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			r.logger.Error("Failed to write journal lines",
				"voucher_id", voucherID,
				"error", err)
			return fmt.Errorf("failed to write journal lines: %w", err)
		}
	}

	stale := bson.M{"voucher_id": voucherID, "_id": bson.M{"$nin": entryIDs}}
	if _, err := collection.DeleteMany(ctx, stale); err != nil {
		r.logger.Error("Failed to remove stale journal lines",
			"voucher_id", voucherID,
			"error", err)
		return fmt.Errorf("failed to remove stale journal lines: %w", err)
	}

	return nil
}

// ListByAccount retrieves one page of an account's lines, newest first, with the total count
func (r *JournalRepository) ListByAccount(ctx context.Context, q journal.Query) ([]journal.Line, int64, error) {
	collection := r.db.Collection(JournalCollectionName)

	filter := bson.M{"account_id": q.AccountID}
	if q.DateStart != nil || q.DateEnd != nil {
		dateRange := bson.M{}
		if q.DateStart != nil {
			dateRange["$gte"] = *q.DateStart
		}
		if q.DateEnd != nil {
			dateRange["$lte"] = *q.DateEnd
		}
		filter["date"] = dateRange
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count journal lines",
			"account_id", q.AccountID,
			"error", err)
		return nil, 0, fmt.Errorf("failed to count journal lines: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get journal lines",
			"account_id", q.AccountID,
			"error", err)
		return nil, 0, fmt.Errorf("failed to get journal lines: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []lineDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode journal lines",
			"account_id", q.AccountID,
			"error", err)
		return nil, 0, fmt.Errorf("failed to decode journal lines: %w", err)
	}

	lines := make([]journal.Line, 0, len(docs))
	for _, d := range docs {
		l, err := d.line()
		if err != nil {
			return nil, 0, err
		}
		lines = append(lines, l)
	}

	return lines, total, nil
}
