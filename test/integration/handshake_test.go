// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

//go:build integration

package integration

import (
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pegasus-emu/pegasus/internal/auth"
	authpg "github.com/pegasus-emu/pegasus/internal/auth/postgres"
	"github.com/pegasus-emu/pegasus/internal/observability"
	"github.com/pegasus-emu/pegasus/internal/server"
	"github.com/pegasus-emu/pegasus/internal/store"
	"github.com/pegasus-emu/pegasus/internal/wire"
)

// testEnv holds the full stack: database, schema, and a running server.
type testEnv struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container testcontainers.Container
	srv       *server.Server
	srvDone   chan struct{}
}

func setupTestEnv() (*testEnv, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &testEnv{ctx: ctx, cancel: cancel}

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("pegasus_test"),
		pgcontainer.WithUsername("pegasus"),
		pgcontainer.WithPassword("pegasus"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		cancel()
		return nil, err
	}
	env.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		env.teardown()
		return nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err == nil {
		err = migrator.Up()
		_ = migrator.Close()
	}
	if err != nil {
		env.teardown()
		return nil, err
	}

	pool, err := store.NewPool(ctx, connStr)
	if err != nil {
		env.teardown()
		return nil, err
	}

	provisioner, err := auth.NewProvisioner(
		authpg.NewAccountRepository(pool),
		auth.NewBcryptHasher(),
		auth.PrivilegeAll,
	)
	if err != nil {
		env.teardown()
		return nil, err
	}
	binder, err := auth.NewBinder(auth.NewSequenceCounter())
	if err != nil {
		env.teardown()
		return nil, err
	}
	handler, err := auth.NewHandler(auth.NewDefaultValidator(), provisioner, binder)
	if err != nil {
		env.teardown()
		return nil, err
	}

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	srv, err := server.NewServer("127.0.0.1:0", server.NewSessionManager(), metrics, nil)
	if err != nil {
		env.teardown()
		return nil, err
	}
	srv.Register(wire.OpcodeAuthenticate, server.MessageHandlerFunc(
		func(ctx context.Context, session *server.GameSession, msg *wire.Object) error {
			return handler.HandleAuthenticate(ctx, session, msg)
		},
	))
	env.srv = srv

	env.srvDone = make(chan struct{})
	go func() {
		defer close(env.srvDone)
		_ = srv.Run(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for srv.Addr() == "" {
		if time.Now().After(deadline) {
			env.teardown()
			return nil, context.DeadlineExceeded
		}
		time.Sleep(10 * time.Millisecond)
	}

	return env, nil
}

func (env *testEnv) teardown() {
	env.cancel()
	if env.srvDone != nil {
		<-env.srvDone
	}
	if env.container != nil {
		_ = env.container.Terminate(context.Background())
	}
}

func loginMessage(username, password, version string) *wire.Object {
	character := wire.NewObject()
	character.Set(0, wire.StringField(username+"'s hero"))

	msg := wire.NewObject()
	msg.SetOpcode(wire.OpcodeAuthenticate)
	msg.Set(2, wire.StringField(username))
	msg.Set(3, wire.StringField(password))
	msg.Set(4, wire.ObjectField(character))
	msg.Set(5, wire.StringField(version))
	msg.Set(6, wire.StringField(username))
	return msg
}

var _ = Describe("Authentication handshake", func() {
	var (
		env *testEnv
		enc *wire.Encoder
		dec *wire.Decoder
	)

	connect := func() net.Conn {
		conn, err := net.Dial("tcp", env.srv.Addr())
		Expect(err).NotTo(HaveOccurred())
		Expect(conn.SetDeadline(time.Now().Add(15 * time.Second))).To(Succeed())
		enc = wire.NewEncoder(conn)
		dec = wire.NewDecoder(conn)
		return conn
	}

	BeforeEach(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		env.teardown()
	})

	It("provisions an account on first login and succeeds", func() {
		conn := connect()
		defer conn.Close()

		Expect(enc.Encode(loginMessage("alice", "hunter2", auth.SupportedProtocolVersion))).To(Succeed())

		reply, err := dec.Decode()
		Expect(err).NotTo(HaveOccurred())
		op, err := reply.Opcode()
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(wire.OpcodeAuthenticate))

		privileges, err := reply.IntAt(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(privileges).To(Equal(int64(auth.PrivilegeAll)))
	})

	It("accepts a returning account with the right password", func() {
		conn := connect()
		Expect(enc.Encode(loginMessage("bob", "swordfish", auth.SupportedProtocolVersion))).To(Succeed())
		_, err := dec.Decode()
		Expect(err).NotTo(HaveOccurred())
		conn.Close()

		conn = connect()
		defer conn.Close()
		Expect(enc.Encode(loginMessage("bob", "swordfish", auth.SupportedProtocolVersion))).To(Succeed())
		reply, err := dec.Decode()
		Expect(err).NotTo(HaveOccurred())
		op, err := reply.Opcode()
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(wire.OpcodeAuthenticate))
	})

	It("rejects a returning account with the wrong password", func() {
		conn := connect()
		Expect(enc.Encode(loginMessage("carol", "rightpass", auth.SupportedProtocolVersion))).To(Succeed())
		_, err := dec.Decode()
		Expect(err).NotTo(HaveOccurred())
		conn.Close()

		conn = connect()
		defer conn.Close()
		Expect(enc.Encode(loginMessage("carol", "wrongpass", auth.SupportedProtocolVersion))).To(Succeed())
		reply, err := dec.Decode()
		Expect(err).NotTo(HaveOccurred())

		op, err := reply.Opcode()
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(wire.OpcodeAuthenticateError))

		payload, err := reply.ObjectAt(1)
		Expect(err).NotTo(HaveOccurred())
		code, err := payload.IntAt(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(int64(auth.CodeInvalidCredentials)))
	})

	It("rejects a stale client version with code 1", func() {
		conn := connect()
		defer conn.Close()

		Expect(enc.Encode(loginMessage("dave", "hunter2", "1.0.0.0"))).To(Succeed())
		reply, err := dec.Decode()
		Expect(err).NotTo(HaveOccurred())

		op, err := reply.Opcode()
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(wire.OpcodeAuthenticateError))

		payload, err := reply.ObjectAt(1)
		Expect(err).NotTo(HaveOccurred())
		code, err := payload.IntAt(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(int64(auth.CodeVersionMismatch)))
	})

	It("tracks sessions while clients are connected", func() {
		conn := connect()
		defer conn.Close()

		Eventually(func() int {
			return env.srv.Sessions().Count()
		}, 2*time.Second, 10*time.Millisecond).Should(Equal(1))
	})
})
