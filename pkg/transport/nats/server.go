package nats

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const ReadyForConnectionsTimeout = 5 * time.Second

type ServerManagerParams struct {
	Host              string
	Port              int
	Name              string
	Debug             bool
	ConnectionTimeout time.Duration
}

// ServerManager runs an embedded NATS server that ranks can rendezvous on.
type ServerManager struct {
	Server *server.Server
}

// NewServerManager starts a NATS server and waits until it accepts connections.
func NewServerManager(ctx context.Context, params ServerManagerParams) (*ServerManager, error) {
	if params.Host == "" {
		params.Host = "0.0.0.0"
	}
	if !isPortOpen(params.Host, params.Port) {
		return nil, errors.Errorf("port %d is already in use, stop the other process or choose another port", params.Port)
	}

	opts := &server.Options{
		ServerName: params.Name,
		Host:       params.Host,
		Port:       params.Port,
		Debug:      params.Debug,
		NoSigs:     true,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create NATS server")
	}
	ns.SetLoggerV2(newServerLogger(log.Logger, opts.ServerName), opts.Debug, opts.Trace, opts.TraceVerbose)
	go ns.Start()

	if params.ConnectionTimeout == 0 {
		params.ConnectionTimeout = ReadyForConnectionsTimeout
	}
	if !ns.ReadyForConnections(params.ConnectionTimeout) {
		ns.Shutdown()
		return nil, errors.Errorf("NATS server not ready for connection within %s", params.ConnectionTimeout)
	}
	log.Ctx(ctx).Debug().Msgf("NATS server %s listening on %s", ns.ID(), ns.ClientURL())
	return &ServerManager{Server: ns}, nil
}

// ClientURL is the URL ranks should connect to.
func (sm *ServerManager) ClientURL() string {
	return sm.Server.ClientURL()
}

// Stats summarises the server's load.
type Stats struct {
	Connections   int
	Subscriptions uint32
	InMsgs        int64
	OutMsgs       int64
}

func (sm *ServerManager) Stats() (Stats, error) {
	varz, err := sm.Server.Varz(&server.VarzOptions{})
	if err != nil {
		return Stats{}, errors.Wrap(err, "failed to read NATS server stats")
	}
	return Stats{
		Connections:   varz.Connections,
		Subscriptions: varz.Subscriptions,
		InMsgs:        varz.InMsgs,
		OutMsgs:       varz.OutMsgs,
	}, nil
}

// Stop shuts the server down and waits for it to exit.
func (sm *ServerManager) Stop() {
	sm.Server.Shutdown()
	sm.Server.WaitForShutdown()
}

func isPortOpen(host string, port int) bool {
	if port <= 0 {
		// the server picks a random port
		return true
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}
