package item

import (
	"context"

	"github.com/dstotijn/go-notion"
	"github.com/webuild-community/honor/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type pageUpdater interface {
	UpdatePageProps(ctx context.Context, pageID string, params notion.UpdatePageParams) (notion.Page, error)
}

type notionSvc struct {
	logger       *zap.Logger
	db           *gorm.DB
	notionClient pageUpdater
}

// NewNotionMirror keeps the "Redeemed" property of linked notion pages in
// sync with the redemption log.
func NewNotionMirror(logger *zap.Logger, db *gorm.DB, notionClient *notion.Client) Mirror {
	return &notionSvc{
		logger:       logger,
		db:           db,
		notionClient: notionClient,
	}
}

type redeemedCount struct {
	ItemID       uint
	NotionPageID string
	Redeemed     int64
}

func (s *notionSvc) redeemedCounts(ctx context.Context) ([]redeemedCount, error) {
	var counts []redeemedCount
	err := s.db.WithContext(ctx).
		Model(&model.Item{}).
		Select("item.id as item_id, item.notion_page_id as notion_page_id, count(redemption.id) as redeemed").
		Joins("left join redemption on redemption.item_id = item.id").
		Where("item.notion_page_id <> ''").
		Group("item.id, item.notion_page_id").
		Order("item.id asc").
		Scan(&counts).Error
	return counts, err
}

func (s *notionSvc) SyncRedeemed(ctx context.Context) error {
	counts, err := s.redeemedCounts(ctx)
	if err != nil {
		s.logger.Error("cannot count redemptions", zap.Error(err))
		return err
	}

	for _, v := range counts {
		redeemed := float64(v.Redeemed)
		if _, err := s.notionClient.UpdatePageProps(ctx,
			v.NotionPageID,
			notion.UpdatePageParams{DatabasePageProperties: &notion.DatabasePageProperties{
				"Redeemed": notion.DatabasePageProperty{
					Type:   "number",
					Number: &redeemed,
				}}},
		); err != nil {
			s.logger.Error("cannot update notion page", zap.Error(err), zap.Uint("item_id", v.ItemID))
			continue
		}
	}
	return nil
}
