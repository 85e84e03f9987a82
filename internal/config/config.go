package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Batch error policies.
const (
	OnErrorContinue = "continue"
	OnErrorAbort    = "abort"
)

// Segmenter backends.
const (
	SegmenterSyllable = "syllable"
	SegmenterCommand  = "command"
)

type Config struct {
	SourceDir      string   // corpus .txt files read by generate
	TranslationDir string   // generated .po files; export renders next to them
	ParagraphDir   string   // translation-first reading copies
	GlossaryPath   string   // glossary source JSON
	GlossaryCache  string   // built glossary cache
	Segmenter      string   // tokenizer backend
	SegmenterCmd   []string // argv for the command backend
	MatchDedupe    bool     // report each glossary entry once per line
	WorkerCount    int
	OnError        string // batch policy when one file fails
	LogLevel       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	return &Config{
		SourceDir:      getEnv("SOURCE_DIR", "literal/tibetan"),
		TranslationDir: getEnv("TRANSLATION_DIR", "literal/translation"),
		ParagraphDir:   getEnv("PARAGRAPH_DIR", "communicative/paragraphs"),
		GlossaryPath:   getEnv("GLOSSARY_PATH", "resources/glossary.json"),
		GlossaryCache:  getEnv("GLOSSARY_CACHE", "resources/glossary.db"),
		Segmenter:      getEnv("SEGMENTER", SegmenterSyllable),
		SegmenterCmd:   strings.Fields(getEnv("SEGMENTER_CMD", "")),
		MatchDedupe:    getEnvBool("MATCH_DEDUPE", true),
		WorkerCount:    getEnvInt("WORKER_COUNT", 1),
		OnError:        getEnv("ON_ERROR", OnErrorContinue),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
