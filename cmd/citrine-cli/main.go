package main

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/citrinedb/citrine-go/client"
	"github.com/citrinedb/citrine-go/policy"
)

func main() {
	args := parseCliArgs()

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	if !args.verbose {
		logger = level.NewFilter(logger, level.AllowWarn())
	}

	conf := client.DefaultConfig()
	conf.Logger = logger

	c, err := client.Connect(conf, args.seeds...)
	if err != nil {
		level.Error(logger).Log("msg", "failed to connect", "seeds", fmt.Sprint(args.seeds), "err", err)
		os.Exit(1)
	}

	defer func() {
		_ = c.Close()
	}()

	if err := run(c, args); err != nil {
		level.Error(logger).Log("msg", "operation failed", "op", args.op, "err", err)
		os.Exit(1)
	}
}

func run(c *client.Client, args cliArgs) error {
	p := policy.Default()
	p.Timeout = args.timeout

	wp := policy.DefaultWrite()
	wp.Timeout = args.timeout

	key := []byte(args.key)

	switch args.op {
	case "get":
		rec, err := c.Get(p, args.namespace, args.set, key)
		if err != nil {
			return err
		}

		fmt.Printf("generation=%d expiration=%d payload=%q\n", rec.Generation, rec.Expiration, rec.Payload)
	case "put":
		if err := c.Put(wp, args.namespace, args.set, key, []byte(args.value)); err != nil {
			return err
		}

		fmt.Println("ok")
	case "delete":
		existed, err := c.Delete(wp, args.namespace, args.set, key)
		if err != nil {
			return err
		}

		fmt.Printf("existed=%v\n", existed)
	case "exists":
		exists, err := c.Exists(p, args.namespace, args.set, key)
		if err != nil {
			return err
		}

		fmt.Printf("exists=%v\n", exists)
	default:
		return fmt.Errorf("unknown operation: %q", args.op)
	}

	return nil
}
