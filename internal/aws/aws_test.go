// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
)

func TestLoadOptions(t *testing.T) {
	assert.Empty(t, loadOptions())

	opts := loadOptions(
		WithProfile("site"),
		WithRegion("eu-west-1"),
		WithRetryer(func() awsv2.Retryer { return retry.NewStandard() }),
	)
	assert.Len(t, opts, 3)

	var lo config.LoadOptions
	for _, fn := range opts {
		assert.NoError(t, fn(&lo))
	}
	assert.Equal(t, "site", lo.SharedConfigProfile)
	assert.Equal(t, "eu-west-1", lo.Region)
	assert.NotNil(t, lo.Retryer)
}

func TestWithS3Endpoint(t *testing.T) {
	var o s3v2.Options
	WithS3Endpoint("")(&o)
	assert.Nil(t, o.BaseEndpoint)
	assert.False(t, o.UsePathStyle)

	WithS3Endpoint("http://localhost:9000")(&o)
	assert.Equal(t, "http://localhost:9000", awsv2.ToString(o.BaseEndpoint))
	assert.True(t, o.UsePathStyle)
}
