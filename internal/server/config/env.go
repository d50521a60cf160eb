package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/dmitrijs2005/alumnihub/internal/flagx"
	"github.com/dmitrijs2005/alumnihub/internal/timex"
	"github.com/joho/godotenv"
)

// loadDotEnv copies the dotenv file into the process environment. Variables
// already set win over the file. A missing default ".env" is not an error;
// a missing file requested with -env is.
func loadDotEnv(args []string) error {
	path := flagx.EnvFileFlag(args)
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return godotenv.Load(path)
}

// parseEnv overlays settings from the environment. Variable names follow the
// ones the portal has always been deployed with (ACCESS_TOKEN_SECRET,
// ACCESS_TOKEN_EXPIRY, ...). Expiry values accept "15m", "7d" or seconds.
func parseEnv(config *Config, args []string, lookup func(string) (string, bool)) error {
	if err := loadDotEnv(args); err != nil {
		return err
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	str("ADDRESS", &config.EndpointAddrHTTP)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("ACCESS_TOKEN_SECRET", &config.AccessTokenSecret)
	str("REFRESH_TOKEN_SECRET", &config.RefreshTokenSecret)
	str("S3_ACCESS_KEY", &config.S3RootUser)
	str("S3_SECRET_KEY", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_ENDPOINT", &config.S3BaseEndpoint)
	str("S3_PUBLIC_URL", &config.S3PublicBaseURL)
	str("UPLOAD_DIR", &config.UploadDir)
	str("LOG_LEVEL", &config.LogLevel)

	var errs []error

	duration := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := timex.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
	duration("ACCESS_TOKEN_EXPIRY", &config.AccessTokenValidityDuration)
	duration("REFRESH_TOKEN_EXPIRY", &config.RefreshTokenValidityDuration)

	integer := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
	integer("BCRYPT_COST", &config.BcryptCost)
	integer("GALLERY_UPLOAD_CONCURRENCY", &config.GalleryUploadConcurrency)

	if v, ok := lookup("ADMIN_SELF_REGISTRATION"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ADMIN_SELF_REGISTRATION: %w", err))
		} else {
			config.AdminSelfRegistration = b
		}
	}

	return errors.Join(errs...)
}
