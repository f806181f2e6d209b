package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const badWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// SeedBadWords downloads the moderation word list when the bad_words table is empty
func (db *DB) SeedBadWords(ctx context.Context) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bad_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check bad words count: %w", err)
	}

	if count > 0 {
		slog.Info("bad words filter already populated", "count", count)
		return nil
	}

	slog.Info("downloading bad words list")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, badWordsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build bad words request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download bad words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from bad words URL: %d", resp.StatusCode)
	}

	added, err := db.LoadBadWords(ctx, resp.Body)
	if err != nil {
		return err
	}

	slog.Info("bad words filter populated", "count", added)
	return nil
}

// LoadBadWords inserts one word per line from r, skipping blanks and duplicates
func (db *DB) LoadBadWords(ctx context.Context, r io.Reader) (int, error) {
	insert := db.Dialect.InsertIgnore("bad_words", "word")
	added := 0

	err := db.WithTx(ctx, func(tx *Tx) error {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			word := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if word == "" {
				continue
			}

			result, err := tx.ExecContext(ctx, insert, word)
			if err != nil {
				return fmt.Errorf("failed to insert bad word: %w", err)
			}
			if n, _ := result.RowsAffected(); n > 0 {
				added++
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading bad words: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// FindBadWords returns the words of text that appear in the bad words list
func (db *DB) FindBadWords(ctx context.Context, text string) ([]string, error) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
	if len(words) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(words))
	var found []string
	for _, word := range words {
		if seen[word] {
			continue
		}
		seen[word] = true

		var count int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bad_words WHERE word = ?", word).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to check bad word: %w", err)
		}
		if count > 0 {
			found = append(found, word)
		}
	}

	return found, nil
}
