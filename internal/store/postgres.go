package store

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&GameRecord{}, &RoundRecord{}, &EventRecord{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) CreateGame(ctx context.Context, game GameRecord) error {
	return p.db.WithContext(ctx).Create(&game).Error
}

func (p *Postgres) Game(ctx context.Context, code string) (GameRecord, error) {
	var game GameRecord
	err := p.db.WithContext(ctx).Where("code = ?", code).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return GameRecord{}, ErrNotFound
	}
	return game, err
}

func (p *Postgres) OpenRound(ctx context.Context, gameID string, number int) error {
	return p.db.WithContext(ctx).Create(&RoundRecord{GameID: gameID, Number: number, Status: RoundOpen}).Error
}

func (p *Postgres) LockRound(ctx context.Context, gameID string, number int) error {
	res := p.db.WithContext(ctx).Model(&RoundRecord{}).
		Where("game_id = ? AND number = ? AND status = ?", gameID, number, RoundOpen).
		Update("status", RoundLocked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (p *Postgres) ResolveRound(ctx context.Context, gameID string, number int, snapshot []byte, events []EventRecord, winner string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&RoundRecord{}).
			Where("game_id = ? AND number = ? AND status = ?", gameID, number, RoundLocked).
			Updates(map[string]any{"status": RoundResolved, "snapshot": snapshot})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		for i := range events {
			events[i].GameID = gameID
			events[i].Round = number
			events[i].Seq = i
		}
		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return err
			}
		}
		if winner != "" {
			if err := tx.Model(&GameRecord{}).Where("id = ?", gameID).Update("winner", winner).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) Events(ctx context.Context, gameID string, round int) ([]EventRecord, error) {
	var out []EventRecord
	err := p.db.WithContext(ctx).
		Where("game_id = ? AND round = ?", gameID, round).
		Order("seq").Find(&out).Error
	return out, err
}
