package config_test

import (
	"testing"

	"github.com/navikt/gemlint/internal/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("LoadConfigWithEnv", func() {
	It("defaults to no storage and single-threaded scanning", func() {
		cfg := config.LoadConfigWithEnv(func(string) string { return "" })

		Expect(cfg.Storage).To(Equal(config.StorageNone))
		Expect(cfg.Parallelism).To(Equal(1))
		Expect(cfg.Debug).To(BeFalse())
	})

	It("loads postgres settings from env", func() {
		mockEnv := map[string]string{
			"GEMLINT_STORAGE":     "postgres",
			"POSTGRES_DSN":        "postgres://...",
			"GEMLINT_DEBUG":       "true",
			"GEMLINT_PARALLELISM": "8",
		}
		cfg := config.LoadConfigWithEnv(func(key string) string { return mockEnv[key] })

		Expect(cfg.Storage).To(Equal(config.StoragePostgres))
		Expect(cfg.PostgresDSN).To(Equal("postgres://..."))
		Expect(cfg.Debug).To(BeTrue())
		Expect(cfg.Parallelism).To(Equal(8))
	})

	It("loads bigquery settings from env", func() {
		mockEnv := map[string]string{
			"GEMLINT_STORAGE": "bigquery",
			"BQ_PROJECT_ID":   "proj",
			"BQ_DATASET":      "ds",
			"BQ_TABLE":        "tbl",
		}
		cfg := config.LoadConfigWithEnv(func(key string) string { return mockEnv[key] })

		Expect(cfg.Storage).To(Equal(config.StorageBigQuery))
		Expect(cfg.BQProjectID).To(Equal("proj"))
	})

	It("ignores a non-positive parallelism override", func() {
		mockEnv := map[string]string{"GEMLINT_PARALLELISM": "-3"}
		cfg := config.LoadConfigWithEnv(func(key string) string { return mockEnv[key] })

		Expect(cfg.Parallelism).To(Equal(1))
	})
})

var _ = Describe("ValidateConfig", func() {
	It("passes for storage none with no fields set", func() {
		Expect(config.ValidateConfig(config.Config{Storage: config.StorageNone})).To(Succeed())
	})

	It("fails for postgres storage without a DSN", func() {
		err := config.ValidateConfig(config.Config{Storage: config.StoragePostgres})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("POSTGRES_DSN"))
	})

	It("passes for postgres storage with a DSN", func() {
		cfg := config.Config{Storage: config.StoragePostgres, PostgresDSN: "postgres://..."}
		Expect(config.ValidateConfig(cfg)).To(Succeed())
	})

	It("fails for bigquery storage missing dataset/table", func() {
		err := config.ValidateConfig(config.Config{Storage: config.StorageBigQuery, BQProjectID: "p"})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("BQ_DATASET"))
	})

	It("rejects an unrecognized storage value", func() {
		err := config.ValidateConfig(config.Config{Storage: "s3"})
		Expect(err).To(HaveOccurred())
	})
})
