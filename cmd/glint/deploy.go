package main

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/glint-ui/glint/pkg/publish"
)

func deployCmd() *cobra.Command {
	var bucket, prefix, region string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Publish rendered pages to S3",
		Long: `Render the demo pages to static HTML and upload them to an S3
bucket. Credentials are read from the standard AWS environment
variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, and optionally
AWS_SESSION_TOKEN).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bucket == "" {
				return errors.New("--bucket is required")
			}

			client := s3.New(s3.Options{
				Region:      region,
				Credentials: envCredentials(),
			})
			p := publish.New(client, bucket, prefix)

			if err := p.PublishSite(cmd.Context(), demoPages()); err != nil {
				return err
			}
			success("deployed to s3://%s/%s", bucket, prefix)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Target S3 bucket (required)")
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Key prefix inside the bucket")
	cmd.Flags().StringVarP(&region, "region", "r", "us-east-1", "AWS region")

	return cmd
}

// envCredentials builds a credentials provider from the standard AWS
// environment variables.
func envCredentials() aws.CredentialsProvider {
	return aws.NewCredentialsCache(aws.CredentialsProviderFunc(
		func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			}, nil
		}))
}
