// Command coupler-run is a minimal two-participant demo driver: it wires
// up a CouplingScheme over a real TCP connection between two invocations
// of this same binary and runs a fixed number of time windows exchanging
// a single scalar field on a two-vertex mesh. It is not a general
// configuration loader — real participants build their CouplingScheme
// from parsed configuration, not flags.
package main

import (
	"fmt"
	"os"

	"github.com/mpcouple/coupler/comm"
	"github.com/mpcouple/coupler/cplscheme"
	"github.com/mpcouple/coupler/errs"
	"github.com/mpcouple/coupler/internal/diag"
	"github.com/mpcouple/coupler/m2n"
	"github.com/mpcouple/coupler/mesh"
	"github.com/mpcouple/coupler/transport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type settings struct {
	Participant   string
	Role          string
	Scheme        string
	Listen        string
	Peer          string
	Windows       int
	Dt            float64
	MaxIterations int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	s := &settings{}

	cmd := &cobra.Command{
		Use:   "coupler-run",
		Short: "run one participant of a two-party coupled demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindSettings(v, s)
			return run(s)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&s.Participant, "participant", "SolverA", "this participant's name")
	flags.StringVar(&s.Role, "role", "first", "protocol role: first or second")
	flags.StringVar(&s.Scheme, "scheme", "serial-explicit", "serial-explicit|parallel-explicit|serial-implicit|parallel-implicit")
	flags.StringVar(&s.Listen, "listen", "", "address to accept the peer connection on (first participant)")
	flags.StringVar(&s.Peer, "peer", "", "address to dial the peer on (second participant)")
	flags.IntVar(&s.Windows, "windows", 2, "number of time windows to run")
	flags.Float64Var(&s.Dt, "dt", 1.0, "time-window size")
	flags.IntVar(&s.MaxIterations, "max-iterations", 20, "implicit scheme iteration bound")

	v.SetEnvPrefix("COUPLER")
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	return cmd
}

func bindSettings(v *viper.Viper, s *settings) {
	s.Participant = v.GetString("participant")
	s.Role = v.GetString("role")
	s.Scheme = v.GetString("scheme")
	s.Listen = v.GetString("listen")
	s.Peer = v.GetString("peer")
	s.Windows = v.GetInt("windows")
	s.Dt = v.GetFloat64("dt")
	s.MaxIterations = v.GetInt("max-iterations")
}

func run(s *settings) error {
	log := diag.New(s.Participant, 0)

	role, err := parseRole(s.Role)
	if err != nil {
		return err
	}
	schemeType, err := parseSchemeType(s.Scheme)
	if err != nil {
		return err
	}

	conn, err := connect(s, role)
	if err != nil {
		return err
	}
	defer conn.Close()

	m, data := twoVertexMesh(s.Participant)

	cs := buildScheme(s, role, schemeType, m, data, conn, log)

	if _, err := cs.Initialize(); err != nil {
		return err
	}
	for i := 0; i < s.Windows && cs.IsCouplingOngoing(); i++ {
		if _, err := cs.Advance(s.Dt); err != nil {
			return err
		}
		log.Infof("window %d complete, t=%.6g", cs.Scheme.TimeWindow(), cs.Scheme.Time())
	}
	return cs.Finalize()
}

func parseRole(s string) (cplscheme.Role, error) {
	switch s {
	case "first":
		return cplscheme.First, nil
	case "second":
		return cplscheme.Second, nil
	default:
		return 0, errs.Config("", 0, "role", fmt.Errorf("unknown role %q", s))
	}
}

func parseSchemeType(s string) (cplscheme.Type, error) {
	switch s {
	case "serial-explicit":
		return cplscheme.SerialExplicit, nil
	case "parallel-explicit":
		return cplscheme.ParallelExplicit, nil
	case "serial-implicit":
		return cplscheme.SerialImplicit, nil
	case "parallel-implicit":
		return cplscheme.ParallelImplicit, nil
	default:
		return 0, errs.Config("", 0, "scheme", fmt.Errorf("unknown scheme type %q", s))
	}
}

func connect(s *settings, role cplscheme.Role) (*transport.Transport, error) {
	if role == cplscheme.First {
		if s.Listen == "" {
			return nil, errs.Config(s.Participant, 0, "listen", fmt.Errorf("first participant requires --listen"))
		}
		acceptor, err := transport.Listen(s.Participant, 0, s.Listen)
		if err != nil {
			return nil, err
		}
		defer acceptor.Close()
		conn, _, err := acceptor.AcceptConnection()
		return conn, err
	}
	if s.Peer == "" {
		return nil, errs.Config(s.Participant, 0, "peer", fmt.Errorf("second participant requires --peer"))
	}
	return transport.RequestConnection(s.Participant, 0, s.Peer)
}

func twoVertexMesh(participant string) (*mesh.Mesh, *mesh.Data) {
	m, _ := mesh.New(participant+"-mesh", 3)
	v0, _ := m.AddVertex([]float64{0, 0, 0})
	v1, _ := m.AddVertex([]float64{1, 0, 0})
	v0.GlobalIndex = 0
	v1.GlobalIndex = 1
	d := m.AddData("Forces", 1)
	m.AllocateDataValues()
	return m, d
}

func buildScheme(s *settings, role cplscheme.Role, schemeType cplscheme.Type, m *mesh.Mesh, data *mesh.Data, conn *transport.Transport, log *diag.Logger) *cplscheme.Participant {
	registry := cplscheme.NewRegistry()
	cd := registry.Register(m, data, false)

	channel := &m2n.GatherScatter{
		Group:       comm.NewGroup(1),
		LocalMeshes: []*mesh.Mesh{m},
		GlobalCount: len(m.Vertices),
		Constraint:  mesh.Consistent,
		Peer:        conn,
	}

	scheme := &cplscheme.CouplingScheme{
		Participant:   s.Participant,
		Role:          role,
		Type:          schemeType,
		Dt:            s.Dt,
		MaxWindows:    s.Windows,
		MaxIterations: s.MaxIterations,
		MaxHistory:    2,
		Control:       conn,
		Registry:      registry,
		Log:           log,
		Exchanges: []cplscheme.Exchange{
			{Data: cd, From: cplscheme.First, Channel: channel, Rank: 0},
		},
	}
	return cplscheme.NewParticipant(scheme)
}
