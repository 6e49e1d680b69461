package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterGetter is the slice of the SSM client used here.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMAuthenticator reads the admin bcrypt hash from an SSM SecureString
// parameter and caches it for ttl, so rotating the parameter takes effect
// without a restart.
type SSMAuthenticator struct {
	client   ParameterGetter
	param    string
	username string
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	hash      []byte
	fetchedAt time.Time
}

func NewSSMAuthenticator(client ParameterGetter, param, username string, ttl time.Duration) *SSMAuthenticator {
	return &SSMAuthenticator{
		client:   client,
		param:    param,
		username: username,
		ttl:      ttl,
		now:      time.Now,
	}
}

// NewSSMClient builds an SSM client from the default AWS credential chain.
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

func (a *SSMAuthenticator) Authenticate(ctx context.Context, username, password string) error {
	if !usernameMatches(a.username, username) {
		return ErrInvalidCredentials
	}
	hash, err := a.currentHash(ctx)
	if err != nil {
		return err
	}
	return checkHash(hash, password)
}

func (a *SSMAuthenticator) currentHash(ctx context.Context) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.hash != nil && a.now().Sub(a.fetchedAt) < a.ttl {
		return a.hash, nil
	}

	out, err := a.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(a.param),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get ssm parameter %s: %w", a.param, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return nil, errors.New("ssm parameter " + a.param + " is empty")
	}

	a.hash = []byte(aws.ToString(out.Parameter.Value))
	a.fetchedAt = a.now()
	return a.hash, nil
}
