package goals

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fastygo/lifetrack/domain"
)

var errEmptySeed = errors.New("seed defines no categories")

// ParseSeed reads the plain-text seed format: a line ending in ':' opens a
// category, a line starting with '-' adds a Normal goal to the open category.
// Other lines are ignored. Goal ids run sequentially across the whole file.
func ParseSeed(r io.Reader, now time.Time) ([]domain.Category, error) {
	var (
		categories []domain.Category
		current    *domain.Category
		goalID     = 1
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case strings.HasSuffix(line, ":"):
			name := strings.TrimSpace(strings.TrimRight(line, ":"))
			categories = append(categories, newCategory(len(categories)+1, name, now))
			current = &categories[len(categories)-1]
		case strings.HasPrefix(line, "-") && current != nil:
			current.Goals = append(current.Goals, domain.Goal{
				ID:          goalID,
				Description: strings.TrimSpace(line[1:]),
				CategoryID:  current.ID,
				Points:      domain.DifficultyNormal.Points(),
				Difficulty:  domain.DifficultyNormal,
			})
			goalID++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, errEmptySeed
	}
	return categories, nil
}

// LoadSeedFile parses the seed file at path.
func LoadSeedFile(path string, now time.Time) ([]domain.Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSeed(f, now)
}
