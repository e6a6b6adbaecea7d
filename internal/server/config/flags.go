package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/keyshare/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session idle timeout, minutes
//	-e bool     require enrollment (write -e=false to disable)
//	-v int      session token validity, minutes
//	-p int      PIN token validity, minutes
//	-l int      commitment TTL, seconds (0 disables expiry)
//
// Durations are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	spec := flagx.Spec{
		Values: []string{"-a", "-d", "-s", "-t", "-v", "-p", "-l"},
		Bools:  []string{"-e"},
	}
	args := spec.Filter(os.Args[1:])

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.SessionTimeout, "t", config.SessionTimeout, "session timeout (in minutes)")
	fs.BoolVar(&config.CheckUserEnrolled, "e", config.CheckUserEnrolled, "require enrollment")

	sessionTokenValidity := fs.Int("v", int(config.SessionTokenValidity.Minutes()), "session token validity (in minutes)")
	pinTokenValidity := fs.Int("p", int(config.PinTokenValidity.Minutes()), "pin token validity (in minutes)")
	commitmentTTL := fs.Int("l", int(config.CommitmentTTL.Seconds()), "commitment ttl (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidity = time.Duration(*sessionTokenValidity) * time.Minute
	config.PinTokenValidity = time.Duration(*pinTokenValidity) * time.Minute
	config.CommitmentTTL = time.Duration(*commitmentTTL) * time.Second
}
