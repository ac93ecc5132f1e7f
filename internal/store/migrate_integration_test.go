// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pegasus-emu/pegasus/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container for testing.
func setupPostgresContainer() (string, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("pegasus_test"),
		postgres.WithUsername("pegasus"),
		postgres.WithPassword("pegasus"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return "", nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}

	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return connStr, cleanup, nil
}

var _ = Describe("Migrator", func() {
	var (
		connStr string
		cleanup func()
		pool    *pgxpool.Pool
	)

	BeforeEach(func() {
		var err error
		connStr, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())

		pool, err = store.NewPool(context.Background(), connStr)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		pool.Close()
		cleanup()
	})

	It("applies the schema and reports the version", func() {
		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		defer migrator.Close()

		Expect(migrator.Up()).To(Succeed())

		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(BeNumerically(">=", 1))

		ctx := context.Background()
		_, err = pool.Exec(ctx, `
			INSERT INTO accounts (id, username, password_hash)
			VALUES ('01TESTACCOUNT0000000000000', 'alice', 'hash')
		`)
		Expect(err).NotTo(HaveOccurred())
	})

	It("enforces the unique username constraint", func() {
		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		defer migrator.Close()
		Expect(migrator.Up()).To(Succeed())

		ctx := context.Background()
		_, err = pool.Exec(ctx, `
			INSERT INTO accounts (id, username, password_hash)
			VALUES ('01TESTACCOUNT0000000000001', 'bob', 'hash')
		`)
		Expect(err).NotTo(HaveOccurred())

		_, err = pool.Exec(ctx, `
			INSERT INTO accounts (id, username, password_hash)
			VALUES ('01TESTACCOUNT0000000000002', 'bob', 'other-hash')
		`)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("accounts_username_unique"))
	})

	It("rolls the schema back down", func() {
		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		defer migrator.Close()

		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Down()).To(Succeed())

		ctx := context.Background()
		_, err = pool.Exec(ctx, `SELECT 1 FROM accounts LIMIT 1`)
		Expect(err).To(HaveOccurred())
	})
})
