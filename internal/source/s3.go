package source

import (
	"context"
	"fmt"
	"polydict/internal/config"
	"polydict/internal/structure"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// 文档注释：S3 对象数据源
// 背景：对象内容为 GeoJSON（可带 .zst/.lz4 后缀压缩）；endpoint 用于兼容 MinIO 等自建服务。
// 约束：每次 Load 重新 GetObject，不缓存对象；未配置静态密钥时走默认凭证链。
// 构造阶段校验过的客户端会被复用，否则每次 Load 新建。
type s3Source struct {
	bucket   string
	key      string
	region   string
	endpoint string
	access   string
	secret   string
	st       *structure.Structure
	client   *s3.Client
}

func createS3(ctx context.Context, _ string, cfg *config.Config, prefix string, st *structure.Structure, check bool) (Source, error) {
	if _, err := keyName(st); err != nil {
		return nil, err
	}
	s := &s3Source{
		region:   cfg.GetString(config.Join(prefix, "region"), "us-east-1"),
		endpoint: cfg.GetString(config.Join(prefix, "endpoint"), ""),
		access:   cfg.GetString(config.Join(prefix, "access_key_id"), ""),
		secret:   cfg.GetString(config.Join(prefix, "secret_access_key"), ""),
		st:       st,
	}
	var err error
	if s.bucket, err = cfg.String(config.Join(prefix, "bucket")); err != nil {
		return nil, err
	}
	if s.key, err = cfg.String(config.Join(prefix, "key")); err != nil {
		return nil, err
	}
	if check {
		c, err := s.newClient(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := c.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(s.key)}); err != nil {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, err)
		}
		s.client = c
	}
	return s, nil
}

func (s *s3Source) newClient(ctx context.Context) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(s.region)}
	if s.access != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.access, s.secret, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *s3Source) Load(ctx context.Context) ([]Row, error) {
	c := s.client
	if c == nil {
		var err error
		if c, err = s.newClient(ctx); err != nil {
			return nil, err
		}
	}
	resp, err := c.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(s.key)})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := readDecompressed(resp.Body, s.key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s, err)
	}
	return featureRows(data, s.st, s.String())
}

// Clone：不共享客户端
func (s *s3Source) Clone() Source {
	cp := *s
	cp.client = nil
	return &cp
}

func (s *s3Source) String() string { return "s3://" + s.bucket + "/" + s.key }
