package cli

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/gitbridge/pkg/gitlab"
)

// registerUpstreamFlags adds the upstream connection flags shared by every
// subcommand. Defaults come from the same environment variables the server
// reads, so a configured shell needs no flags at all.
func registerUpstreamFlags(fs *flag.FlagSet) {
	fs.String("url", os.Getenv("GITLAB_URL"), "GitLab base URL (default $GITLAB_URL)")
	fs.String("token", os.Getenv("GITLAB_TOKEN"), "GitLab private token (default $GITLAB_TOKEN)")
	fs.Bool("insecure", strings.EqualFold(os.Getenv("GITLAB_VERIFY_SSL"), "false"), "Skip TLS certificate verification")
	fs.Duration("timeout", gitlab.DefaultTimeout, "Per-call upstream timeout")
	fs.Bool("verbose", false, "Log every upstream call")
}

// upstreamClient builds a client from the parsed shared flags.
func upstreamClient(fs *flag.FlagSet) (*gitlab.Client, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if fs.Lookup("verbose").Value.String() == "true" {
		log.SetLevel(logrus.DebugLevel)
	}

	timeout, err := time.ParseDuration(fs.Lookup("timeout").Value.String())
	if err != nil {
		timeout = gitlab.DefaultTimeout
	}

	return gitlab.NewClient(gitlab.Config{
		BaseURL:            fs.Lookup("url").Value.String(),
		Token:              fs.Lookup("token").Value.String(),
		Timeout:            timeout,
		InsecureSkipVerify: fs.Lookup("insecure").Value.String() == "true",
	}, log)
}
