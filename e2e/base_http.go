package e2e

import (
	"chat-room/client"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR is not set")
	}
}

// UniqueName suffixes name so that runs against a long-lived server never collide.
func (s *BaseHTTPSuite) UniqueName(name string) string {
	return fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
}

// WithClient runs fn with a client asserting user, under a colorized step header.
func (s *BaseHTTPSuite) WithClient(step, user string, fn func(ctx context.Context, c *client.Client)) {
	header := fmt.Sprintf("  ====== %s (as %s) ======", step, user)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.RequestTimeout)
	defer cancel()
	fn(ctx, client.New(s.Config.ServerAddr, user, s.Config.RequestTimeout))
}
