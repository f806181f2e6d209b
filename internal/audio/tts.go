// Package audio generates spoken audio for phrases.
package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTTSURL     = "https://translate.google.com/translate_tts"
	ttsRequestTimeout = 10 * time.Second
	maxSlugLength     = 40
)

// TTSService turns phrase text into MP3 files stored under audioDir
type TTSService struct {
	audioDir string
	baseURL  string
	language string
	client   *http.Client
}

// NewTTSService creates a new TTS service writing into audioDir
func NewTTSService(audioDir string) *TTSService {
	return &TTSService{
		audioDir: audioDir,
		baseURL:  defaultTTSURL,
		language: "en",
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// WithEndpoint points the service at another TTS endpoint
func (s *TTSService) WithEndpoint(baseURL string) *TTSService {
	s.baseURL = baseURL
	return s
}

// FileName returns the stable file name used for text
func FileName(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))

	var slug strings.Builder
	lastUnderscore := false
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			slug.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && slug.Len() > 0:
			slug.WriteByte('_')
			lastUnderscore = true
		}
		if slug.Len() >= maxSlugLength {
			break
		}
	}

	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("phrase_%s_%s.mp3", strings.TrimSuffix(slug.String(), "_"), hex.EncodeToString(sum[:4]))
}

// Generate converts text to speech and saves it, returning the file name.
// An existing file for the same text is reused.
func (s *TTSService) Generate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text to speak")
	}

	filename := FileName(text)
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	if err := s.fetch(ctx, text, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	return filename, nil
}

func (s *TTSService) fetch(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("textlen", strconv.Itoa(len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// The endpoint refuses requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	tmp := outputPath + ".part"
	outFile, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		outFile.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return os.Rename(tmp, outputPath)
}

// Delete removes an audio file. Missing files are not an error.
func (s *TTSService) Delete(filename string) error {
	if filename == "" || filename != filepath.Base(filename) {
		return fmt.Errorf("invalid audio file name %q", filename)
	}

	err := os.Remove(filepath.Join(s.audioDir, filename))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
