package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-w string   admin password
//	-t int      admin token validity, minutes
//	-i int      scheduler poll interval, seconds
//	-n int      scheduler batch size
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (empty disables the proof archive)
//
// The function filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers and converted afterwards.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-w", "-t", "-i", "-n", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.AdminPassword, "w", config.AdminPassword, "admin password")

	adminTokenValidity := fs.Int("t", int(config.AdminTokenValidityDuration.Minutes()), "admin token validity (in minutes)")
	schedulerInterval := fs.Int("i", int(config.SchedulerInterval.Seconds()), "scheduler poll interval (in seconds)")

	fs.IntVar(&config.SchedulerBatchSize, "n", config.SchedulerBatchSize, "scheduler batch size")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AdminTokenValidityDuration = time.Duration(*adminTokenValidity) * time.Minute
	config.SchedulerInterval = time.Duration(*schedulerInterval) * time.Second
}
