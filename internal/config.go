package internal

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=3000"`
	GrpcPort             int           `env:"GRPC_PORT,default=50051"`
	DebugPort            int           `env:"DEBUG_PORT,default=8081"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	DispatchTimeout      time.Duration `env:"DISPATCH_TIMEOUT,default=5s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	StorySweepInterval   time.Duration `env:"STORY_SWEEP_INTERVAL,default=1m"`
	AuthSecret           string        `env:"AUTH_SECRET"`
	WriteWait            time.Duration `env:"WRITE_WAIT,default=10s"`
	PongWait             time.Duration `env:"PONG_WAIT,default=60s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=10s"`
	RamThreshold         float32       `env:"RAM_THRESHOLD,default=90"`
	CensoredWords        string        `env:"CENSORED_WORDS"`
	CensoredChar         string        `env:"CENSORED_CHAR,default=*"`
}

// CensoredWordList splits the comma separated CENSORED_WORDS.
func (c Config) CensoredWordList() []string {
	words := lo.Map(strings.Split(c.CensoredWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	})
	return lo.Compact(words)
}

// CensoredRune is the first rune of CENSORED_CHAR.
func (c Config) CensoredRune() (rune, error) {
	r, size := utf8.DecodeRuneInString(c.CensoredChar)
	if size == 0 || r == utf8.RuneError || size != len(c.CensoredChar) {
		return 0, fmt.Errorf("CENSORED_CHAR must be a single character, got %q", c.CensoredChar)
	}
	return r, nil
}
