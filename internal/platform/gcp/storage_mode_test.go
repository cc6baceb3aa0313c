package gcp

import (
	"errors"
	"testing"

	"github.com/yungbote/execudex-backend/internal/config"
)

func TestObjectStorageConfigFromDefaultsToDisabled(t *testing.T) {
	cfg := ObjectStorageConfigFrom(config.StorageConfig{})
	if cfg.Mode != ObjectStorageModeDisabled {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeDisabled, cfg.Mode)
	}
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		t.Fatalf("ValidateObjectStorageConfig: %v", err)
	}
}

func TestValidateObjectStorageConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  ObjectStorageConfig
		code ObjectStorageConfigErrorCode
	}{
		{"invalid mode", ObjectStorageConfig{Mode: "s3", Bucket: "b"}, ObjectStorageConfigErrorInvalidMode},
		{"missing bucket", ObjectStorageConfig{Mode: ObjectStorageModeGCS}, ObjectStorageConfigErrorMissingBucket},
		{"missing emulator host", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, Bucket: "b"}, ObjectStorageConfigErrorMissingEmulatorHost},
		{"invalid emulator host", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, Bucket: "b", EmulatorHost: "fake-gcs:4443"}, ObjectStorageConfigErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateObjectStorageConfig(tc.cfg)
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type: want=*ObjectStorageConfigError got=%T (%v)", err, err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, cfgErr.Code)
			}
		})
	}
}

func TestValidateObjectStorageConfigEmulatorOK(t *testing.T) {
	cfg := ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, Bucket: "web", EmulatorHost: "http://fake-gcs:4443"}
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		t.Fatalf("ValidateObjectStorageConfig: %v", err)
	}
}
