package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hamed0406/healthchecker/internal/config"
)

var _ = Describe("Config", func() {
	envKeys := []string{
		"HEALTHCHECK_URLS",
		"HEALTHCHECK_INTERVAL",
		"HEALTHCHECK_TIMEOUT",
		"HEALTHCHECK_LOG_LEVEL",
		"HEALTHCHECK_DATABASE_URL",
		"HEALTHCHECK_ONCE",
	}

	AfterEach(func() {
		for _, k := range envKeys {
			os.Unsetenv(k)
		}
	})

	Describe("Load", func() {
		Context("with no arguments", func() {
			It("should apply defaults", func() {
				cfg, err := config.Load(nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Interval).To(Equal(uint(30)))
				Expect(cfg.IntervalDuration()).To(Equal(30 * time.Second))
				Expect(cfg.Timeout).To(Equal(10 * time.Second))
				Expect(cfg.Once).To(BeFalse())
				Expect(cfg.Output).To(BeEmpty())
				Expect(cfg.Concurrency).To(Equal(0))
				Expect(cfg.LogLevel).To(Equal(config.LogLevelInfo))
				Expect(cfg.OnRecovery).To(BeTrue())
				Expect(cfg.Cooldown).To(Equal(5 * time.Minute))
			})

			It("should fall back to the default URL set", func() {
				cfg, err := config.Load(nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.URLs).To(Equal(config.DefaultURLs))
				Expect(cfg.DefaultURLsUsed).To(BeTrue())
			})
		})

		Context("with flags", func() {
			It("should parse short flags", func() {
				cfg, err := config.Load([]string{"-u", "https://a.example,https://b.example", "-i", "5", "-o", "out.json"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.URLs).To(Equal([]string{"https://a.example", "https://b.example"}))
				Expect(cfg.Interval).To(Equal(uint(5)))
				Expect(cfg.Output).To(Equal("out.json"))
				Expect(cfg.DefaultURLsUsed).To(BeFalse())
			})

			It("should parse long flags", func() {
				cfg, err := config.Load([]string{
					"--urls=https://a.example", "--urls=https://a.example",
					"--interval=1", "--once", "--timeout=2s", "--concurrency=4",
					"--listen=127.0.0.1:9090", "--log-level=DEBUG",
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.URLs).To(HaveLen(2), "duplicates are kept")
				Expect(cfg.Once).To(BeTrue())
				Expect(cfg.Timeout).To(Equal(2 * time.Second))
				Expect(cfg.Concurrency).To(Equal(4))
				Expect(cfg.Listen).To(Equal("127.0.0.1:9090"))
				Expect(cfg.LogLevel).To(Equal(config.LogLevelDebug))
			})

			It("should return ErrHelp for --help", func() {
				_, err := config.Load([]string{"--help"})
				Expect(config.IsHelp(err)).To(BeTrue())
			})

			It("should fail on unknown flags", func() {
				_, err := config.Load([]string{"--bogus"})
				Expect(err).To(HaveOccurred())
				Expect(config.IsHelp(err)).To(BeFalse())
			})

			It("should fail on a negative interval", func() {
				_, err := config.Load([]string{"-i", "-3"})
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with environment variables", func() {
			It("should read HEALTHCHECK_* variables", func() {
				os.Setenv("HEALTHCHECK_URLS", "https://env-a.example, https://env-b.example")
				os.Setenv("HEALTHCHECK_INTERVAL", "7")
				os.Setenv("HEALTHCHECK_TIMEOUT", "1500ms")
				os.Setenv("HEALTHCHECK_DATABASE_URL", "postgres://u:p@localhost:5432/db")

				cfg, err := config.Load(nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.URLs).To(Equal([]string{"https://env-a.example", "https://env-b.example"}))
				Expect(cfg.Interval).To(Equal(uint(7)))
				Expect(cfg.Timeout).To(Equal(1500 * time.Millisecond))
				Expect(cfg.DatabaseURL).To(Equal("postgres://u:p@localhost:5432/db"))
			})

			It("should let flags override the environment", func() {
				os.Setenv("HEALTHCHECK_INTERVAL", "7")
				cfg, err := config.Load([]string{"--interval=3"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Interval).To(Equal(uint(3)))
			})
		})

		Context("with a config file", func() {
			var tempDir string

			BeforeEach(func() {
				tempDir = GinkgoT().TempDir()
			})

			It("should load values from yaml", func() {
				path := filepath.Join(tempDir, "healthcheck.yaml")
				content := "urls:\n  - https://file.example\ninterval: 12\noutput: results.json\n"
				Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

				cfg, err := config.Load([]string{"--config", path})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.URLs).To(Equal([]string{"https://file.example"}))
				Expect(cfg.Interval).To(Equal(uint(12)))
				Expect(cfg.Output).To(Equal("results.json"))
			})

			It("should fail when the file is missing", func() {
				_, err := config.Load([]string{"--config", filepath.Join(tempDir, "missing.yaml")})
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{
				URLs:     []string{"https://example.com"},
				Interval: 30,
				Timeout:  10 * time.Second,
				LogLevel: config.LogLevelInfo,
			}
		})

		It("should accept a valid config", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject a zero interval when looping", func() {
			cfg.Interval = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should allow a zero interval with --once", func() {
			cfg.Interval = 0
			cfg.Once = true
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject a zero timeout", func() {
			cfg.Timeout = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject negative concurrency", func() {
			cfg.Concurrency = -1
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject unknown log levels", func() {
			cfg.LogLevel = "verbose"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a malformed listen address", func() {
			cfg.Listen = "localhost"
			Expect(cfg.Validate()).NotTo(Succeed())
			cfg.Listen = ":8080"
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject a malformed slack webhook", func() {
			cfg.SlackWebhook = "not a url"
			Expect(cfg.Validate()).NotTo(Succeed())
			cfg.SlackWebhook = "https://hooks.slack.com/services/T000/B000/XXX"
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should require at least one URL", func() {
			cfg.URLs = nil
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})

	Describe("SplitList", func() {
		It("should flatten, trim and drop blanks", func() {
			Expect(config.SplitList([]string{" a ,b", "", "c,,"})).To(Equal([]string{"a", "b", "c"}))
		})

		It("should return nil for empty input", func() {
			Expect(config.SplitList(nil)).To(BeNil())
		})
	})

	Describe("Usage", func() {
		It("should list the primary flags", func() {
			u := config.Usage()
			Expect(u).To(ContainSubstring("--urls"))
			Expect(u).To(ContainSubstring("--interval"))
			Expect(u).To(ContainSubstring("--output"))
			Expect(u).To(ContainSubstring("--once"))
		})
	})
})
