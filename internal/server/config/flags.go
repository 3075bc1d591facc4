package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/flagx"
)

var knownFlags = []string{
	"-a", "-m", "-d", "-s", "-t", "-k", "-l",
	"-u", "-p", "-b", "-g", "-e",
	"-cache-ttl", "-max-upload",
}

// parseFlags overlays Config with command-line flags.
//
// Supported flags:
//
//	-a string       HTTP bind address (e.g. ":8080")
//	-m string       gRPC health endpoint bind address (e.g. ":50051")
//	-d string       PostgreSQL DSN
//	-s string       token signing secret
//	-t int          access token validity, minutes
//	-k int          bcrypt cost
//	-l string       log level
//	-u string       S3 root user
//	-p string       S3 root password
//	-b string       S3 bucket name
//	-g string       S3 region
//	-e string       S3 base endpoint
//	-cache-ttl dur  user cache TTL (0 disables)
//	-max-upload int maximum upload size, bytes
//
// Unknown arguments are filtered out first so other components can define
// their own flags. A parse error causes a panic.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "m", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.UserCacheTTL, "cache-ttl", config.UserCacheTTL, "user cache TTL")
	fs.Int64Var(&config.MaxUploadSize, "max-upload", config.MaxUploadSize, "maximum upload size in bytes")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}

	// keep sub-minute values coming from other sources unless -t was given
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
		}
	})
}
