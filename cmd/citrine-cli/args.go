package main

import (
	"flag"
	"strings"
	"time"
)

type cliArgs struct {
	seeds     []string
	namespace string
	set       string
	op        string
	key       string
	value     string
	timeout   time.Duration
	verbose   bool
}

func parseCliArgs() cliArgs {
	args := cliArgs{}

	var seeds string

	flag.StringVar(&seeds, "seeds", "127.0.0.1:3000", "comma-separated seed addresses")
	flag.StringVar(&args.namespace, "namespace", "test", "namespace")
	flag.StringVar(&args.set, "set", "", "set name")
	flag.StringVar(&args.op, "op", "get", "operation: get, put, delete, exists")
	flag.StringVar(&args.key, "key", "", "record key")
	flag.StringVar(&args.value, "value", "", "record value (put only)")
	flag.DurationVar(&args.timeout, "timeout", time.Second, "total request timeout")
	flag.BoolVar(&args.verbose, "verbose", false, "verbose mode")

	flag.Parse()

	args.seeds = strings.Split(seeds, ",")

	return args
}
