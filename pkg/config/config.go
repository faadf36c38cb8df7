package config

import (
	"time"
)

type DB struct {
	Url             string        `envconfig:"URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	Migrate         bool          `envconfig:"MIGRATE" default:"true"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL       string `envconfig:"URL"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"branchledger:idem:"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Idempotency struct {
	Lifetime time.Duration `envconfig:"LIFETIME" default:"30m"`
}

// MainBranch holds the defaults used when the main branch is created.
type MainBranch struct {
	Name     string `envconfig:"NAME" default:"Main Branch"`
	Location string `envconfig:"LOCATION" default:"Head Office"`
	State    string `envconfig:"STATE" default:""`
	Address  string `envconfig:"ADDRESS" default:"Main Office Address"`
}

type Ledger struct {
	// EnforceMainBalance rejects allocations larger than the main branch balance.
	EnforceMainBalance bool        `envconfig:"ENFORCE_MAIN_BALANCE" default:"false"`
	MainBranch         *MainBranch `envconfig:"MAIN_BRANCH"`
}

type Seed struct {
	File string `envconfig:"FILE"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[branchledger]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env         string       `envconfig:"APP_ENV" default:"development"`
	Server      *Server      `envconfig:"SERVER"`
	Log         *Log         `envconfig:"LOG"`
	DB          *DB          `envconfig:"DATABASE"`
	Auth        *Auth        `envconfig:"AUTH"`
	Redis       *Redis       `envconfig:"REDIS"`
	RateLimit   *RateLimit   `envconfig:"RATE_LIMIT"`
	Idempotency *Idempotency `envconfig:"IDEMPOTENCY"`
	Ledger      *Ledger      `envconfig:"LEDGER"`
	Seed        *Seed        `envconfig:"SEED"`
}
