package handlers

import (
	"errors"

	"gorm.io/gorm"

	"github.com/farellandr/theatre/internal/models"
)

var errUnknownID = errors.New("unknown id")

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func findGenres(db *gorm.DB, ids []uint) ([]models.Genre, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var genres []models.Genre
	if err := db.Where("id IN ?", ids).Find(&genres).Error; err != nil {
		return nil, err
	}
	if len(genres) != len(ids) {
		return nil, errUnknownID
	}
	return genres, nil
}

func findActors(db *gorm.DB, ids []uint) ([]models.Actor, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var actors []models.Actor
	if err := db.Where("id IN ?", ids).Find(&actors).Error; err != nil {
		return nil, err
	}
	if len(actors) != len(ids) {
		return nil, errUnknownID
	}
	return actors, nil
}

// takenCounts returns the number of sold tickets per performance id.
func takenCounts(db *gorm.DB, performanceIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(performanceIDs))
	if len(performanceIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PerformanceID uint
		Taken         int
	}
	err := db.Model(&models.Ticket{}).
		Select("performance_id, COUNT(*) AS taken").
		Where("performance_id IN ?", uniqueIDs(performanceIDs)).
		Group("performance_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.PerformanceID] = r.Taken
	}
	return counts, nil
}
