// Package curriculum loads the ordered grammar curriculum and answers
// level-filtered queries for the planner.
package curriculum

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/example/kobot/internal/logger"
	"github.com/example/kobot/pkg/models"
)

type curriculumFile struct {
	Language string `json:"language"`
	Levels   map[string]struct {
		GrammarPoints []grammarPointEntry `json:"grammar_points"`
	} `json:"levels"`
}

type grammarPointEntry struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	LearningOrder int    `json:"learning_order"`
}

// Curriculum holds the per-level grammar points in learning order.
type Curriculum struct {
	language string
	levels   map[string][]models.GrammarPoint
}

// Load reads a curriculum JSON file. A missing file yields an empty
// curriculum: new-item selection then simply produces nothing.
func Load(path string, log *logger.Logger) (*Curriculum, error) {
	c := &Curriculum{levels: make(map[string][]models.GrammarPoint)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Warn("curriculum file not found, continuing with empty curriculum", "path", path)
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read curriculum file: %w", err)
	}

	var file curriculumFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse curriculum file %s: %w", path, err)
	}

	c.language = file.Language
	for level, entry := range file.Levels {
		points := make([]models.GrammarPoint, 0, len(entry.GrammarPoints))
		for i, gp := range entry.GrammarPoints {
			order := gp.LearningOrder
			if order == 0 {
				// Files without explicit ordering fall back to array position.
				order = i + 1
			}
			points = append(points, models.GrammarPoint{
				ID:            gp.ID,
				Description:   gp.Description,
				LearningOrder: order,
			})
		}
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].LearningOrder < points[j].LearningOrder
		})
		c.levels[level] = points
	}

	log.Info("curriculum loaded", "path", path, "levels", len(c.levels))
	return c, nil
}

// Language returns the curriculum's target language, if declared.
func (c *Curriculum) Language() string {
	return c.language
}

// PointsForLevel returns the grammar points for a level in learning order.
// Unknown levels yield an empty slice.
func (c *Curriculum) PointsForLevel(level string) []models.GrammarPoint {
	points := c.levels[level]
	out := make([]models.GrammarPoint, len(points))
	copy(out, points)
	return out
}
