package admin

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/aws_msk_iam_v2"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
	log "github.com/sirupsen/logrus"
)

// SASLMechanism is the name of a SASL mechanism that will be used for client authentication.
type SASLMechanism string

const (
	SASLMechanismAWSMSKIAM   SASLMechanism = "aws-msk-iam"
	SASLMechanismPlain       SASLMechanism = "plain"
	SASLMechanismScramSHA256 SASLMechanism = "scram-sha-256"
	SASLMechanismScramSHA512 SASLMechanism = "scram-sha-512"

	defaultConnTimeout = 10 * time.Second
)

// ConnectorConfig contains the configuration used to construct a connector.
type ConnectorConfig struct {
	BrokerAddr  string
	ConnTimeout time.Duration
	TLS         TLSConfig
	SASL        SASLConfig
}

// TLSConfig stores the TLS-related configuration for a connection.
type TLSConfig struct {
	Enabled    bool
	CertPath   string
	KeyPath    string
	CACertPath string
	ServerName string
	SkipVerify bool
}

// SASLConfig stores the SASL-related configuration for a connection. If SecretsManagerARN is
// set, the username and password are read from that secret, which must be a JSON object
// with "username" and "password" keys.
type SASLConfig struct {
	Enabled           bool
	Mechanism         SASLMechanism
	Username          string
	Password          string
	SecretsManagerARN string
}

// Connector is a wrapper around the low-level, kafka-go dialer and client.
type Connector struct {
	Config      ConnectorConfig
	Dialer      *kafka.Dialer
	KafkaClient *kafka.Client
}

type saslSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loadAWSConfig is swapped out in tests.
var loadAWSConfig = func(ctx context.Context) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx)
}

// NewConnector constructs a new Connector instance given the argument config.
func NewConnector(ctx context.Context, config ConnectorConfig) (*Connector, error) {
	if config.BrokerAddr == "" {
		return nil, errors.New("Broker address must be set")
	}
	if config.ConnTimeout <= 0 {
		config.ConnTimeout = defaultConnTimeout
	}

	connector := &Connector{
		Config: config,
	}

	mechanism, err := saslMechanism(ctx, config.SASL)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := buildTLSConfig(config.TLS)
	if err != nil {
		return nil, err
	}

	connector.Dialer = &kafka.Dialer{
		SASLMechanism: mechanism,
		Timeout:       config.ConnTimeout,
		TLS:           tlsConfig,
	}

	log.Debugf(
		"Connecting to cluster on address %s with TLS enabled=%v, SASL enabled=%v",
		config.BrokerAddr,
		config.TLS.Enabled,
		config.SASL.Enabled,
	)
	connector.KafkaClient = &kafka.Client{
		Addr:    kafka.TCP(config.BrokerAddr),
		Timeout: config.ConnTimeout,
		Transport: &kafka.Transport{
			DialTimeout: config.ConnTimeout,
			SASL:        mechanism,
			TLS:         tlsConfig,
			MetadataTTL: 10 * time.Minute,
		},
	}

	return connector, nil
}

func saslMechanism(ctx context.Context, config SASLConfig) (sasl.Mechanism, error) {
	if !config.Enabled {
		return nil, nil
	}

	if config.Mechanism == SASLMechanismAWSMSKIAM {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("Error loading AWS config for MSK IAM: %+v", err)
		}
		return aws_msk_iam_v2.NewMechanism(awsConfig), nil
	}

	username := config.Username
	password := config.Password

	if config.SecretsManagerARN != "" {
		secret, err := fetchSASLSecret(ctx, config.SecretsManagerARN)
		if err != nil {
			return nil, err
		}
		username = secret.Username
		password = secret.Password
	}

	switch config.Mechanism {
	case SASLMechanismPlain:
		return plain.Mechanism{
			Username: username,
			Password: password,
		}, nil
	case SASLMechanismScramSHA256:
		return scram.Mechanism(scram.SHA256, username, password)
	case SASLMechanismScramSHA512:
		return scram.Mechanism(scram.SHA512, username, password)
	default:
		return nil, fmt.Errorf("Unrecognized SASL mechanism: %s", config.Mechanism)
	}
}

func fetchSASLSecret(ctx context.Context, arn string) (saslSecret, error) {
	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return saslSecret{}, fmt.Errorf("Error loading AWS config for secrets: %+v", err)
	}

	log.Debugf("Fetching SASL credentials from %s", arn)
	resp, err := secretsmanager.NewFromConfig(awsConfig).GetSecretValue(
		ctx,
		&secretsmanager.GetSecretValueInput{
			SecretId: aws.String(arn),
		},
	)
	if err != nil {
		return saslSecret{}, fmt.Errorf("Error fetching secret %s: %+v", arn, err)
	}

	return parseSASLSecret(aws.ToString(resp.SecretString))
}

func parseSASLSecret(contents string) (saslSecret, error) {
	secret := saslSecret{}
	if err := json.Unmarshal([]byte(contents), &secret); err != nil {
		return secret, fmt.Errorf("SASL secret is not a JSON object: %+v", err)
	}
	if secret.Username == "" || secret.Password == "" {
		return secret, errors.New("SASL secret must set both username and password")
	}
	return secret, nil
}

func buildTLSConfig(config TLSConfig) (*tls.Config, error) {
	if !config.Enabled {
		return nil, nil
	}

	var certs []tls.Certificate
	var caCertPool *x509.CertPool

	if config.CertPath != "" && config.KeyPath != "" {
		log.Debugf("Loading key pair from %s and %s", config.CertPath, config.KeyPath)
		cert, err := tls.LoadX509KeyPair(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}

	if config.CACertPath != "" {
		log.Debugf("Adding CA certs from %s", config.CACertPath)
		caCertPool = x509.NewCertPool()
		caCertContents, err := os.ReadFile(config.CACertPath)
		if err != nil {
			return nil, err
		}
		if ok := caCertPool.AppendCertsFromPEM(caCertContents); !ok {
			return nil, fmt.Errorf("Could not append CA certs from %s", config.CACertPath)
		}
	}

	return &tls.Config{
		Certificates:       certs,
		RootCAs:            caCertPool,
		InsecureSkipVerify: config.SkipVerify,
		ServerName:         config.ServerName,
	}, nil
}

// SASLNameToMechanism converts the argument SASL mechanism name string to a valid instance of
// the SASLMechanism enum.
func SASLNameToMechanism(name string) (SASLMechanism, error) {
	normalizedName := strings.ReplaceAll(strings.ToLower(name), "_", "-")
	mechanism := SASLMechanism(normalizedName)

	switch mechanism {
	case SASLMechanismAWSMSKIAM,
		SASLMechanismPlain,
		SASLMechanismScramSHA256,
		SASLMechanismScramSHA512:
		return mechanism, nil
	default:
		return mechanism, fmt.Errorf(
			"SASL mechanism '%s' is not valid; choices are AWS-MSK-IAM, PLAIN, SCRAM-SHA-256, and SCRAM-SHA-512",
			mechanism,
		)
	}
}
