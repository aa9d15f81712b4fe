// Package scenario сценарии проверки сервера управления вызовами.
//
// Каждый запуск получает собственный реактор, группу устройств и
// идентификатор запуска (run_id), который попадает во все записи журнала.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arzzra/sccp_tester/pkg/device"
	"github.com/arzzra/sccp_tester/pkg/event"
	"github.com/arzzra/sccp_tester/pkg/group"
	"github.com/arzzra/sccp_tester/pkg/metrics"
	"github.com/arzzra/sccp_tester/pkg/reactor"
	"github.com/arzzra/sccp_tester/pkg/rtp"
	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

// Имена сценариев
const (
	NameRegister       = "register"
	NameRegisterReject = "register-reject"
	NameDirectMediaOff = "direct-media-off"
)

// DefaultSettle время, в течение которого после отказа в регистрации
// проверяется отсутствие повторных отказов
const DefaultSettle = 500 * time.Millisecond

// Config параметры запуска
type Config struct {
	Host       string
	Port       uint16
	Devices    []device.DeviceInfo
	Timeout    time.Duration
	BufferSize int
}

// Result итог запуска сценария
type Result struct {
	RunID    string
	Scenario string
	Started  time.Time
	Duration time.Duration
}

// Runner запускает сценарии
type Runner struct {
	cfg      Config
	logger   logrus.FieldLogger
	metrics  *metrics.Collector
	resolver device.Resolver
	settle   time.Duration
}

// Option опция Runner
type Option func(*Runner)

// WithLogger задает логгер
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics задает сборщик метрик устройств
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Runner) {
		r.metrics = c
	}
}

// WithResolver задает резолвер имени сервера
func WithResolver(resolver device.Resolver) Option {
	return func(r *Runner) {
		r.resolver = resolver
	}
}

// WithSettle задает время проверки повторных отказов в регистрации
func WithSettle(settle time.Duration) Option {
	return func(r *Runner) {
		r.settle = settle
	}
}

// NewRunner создает Runner
func NewRunner(cfg Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		logger:   logrus.StandardLogger(),
		resolver: net.DefaultResolver,
		settle:   DefaultSettle,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfg.Port == 0 {
		r.cfg.Port = device.DefaultPort
	}
	if r.cfg.Timeout <= 0 {
		r.cfg.Timeout = group.DefaultTimeout
	}
	return r
}

// run окружение одного запуска
type run struct {
	id     string
	logger logrus.FieldLogger
	conn   device.ConnectionInfo
	react  *reactor.Reactor
	group  *group.Group
}

func (r *Runner) start(ctx context.Context, scenario string, devices []device.DeviceInfo, handlers ...event.Handler) (*run, error) {
	id := uuid.NewString()
	logger := r.logger.WithFields(logrus.Fields{"run_id": id, "scenario": scenario})

	conn, err := device.NewConnectionInfoFromHostname(ctx, r.cfg.Host, r.resolver)
	if err != nil {
		return nil, err
	}
	conn.Port = r.cfg.Port

	react, err := reactor.New(reactor.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	handler := event.NewComposite(event.NewLog(logger))
	handler.Extend(handlers)
	g := group.New(react, handler,
		group.WithTimeout(r.cfg.Timeout),
		group.WithBufferSize(r.cfg.BufferSize),
		group.WithLogger(logger),
	)
	for _, info := range devices {
		g.AddDevice(device.New(react, info, conn,
			device.WithLogger(logger),
			device.WithMetrics(r.metrics),
		))
	}

	logger.Infof("starting against %s with %d device(s)", conn, len(devices))
	return &run{id: id, logger: logger, conn: conn, react: react, group: g}, nil
}

func (rn *run) close() {
	rn.group.Close()
	if err := rn.react.Close(); err != nil {
		rn.logger.WithError(err).Warn("close reactor")
	}
}

func (r *Runner) execute(ctx context.Context, scenario string, devices []device.DeviceInfo, body func(*run) error, handlers ...event.Handler) (*Result, error) {
	started := time.Now()
	rn, err := r.start(ctx, scenario, devices, handlers...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", scenario, err)
	}
	defer rn.close()

	res := &Result{RunID: rn.id, Scenario: scenario, Started: started}
	err = body(rn)
	res.Duration = time.Since(started)
	if err != nil {
		rn.logger.WithError(err).Error("scenario failed")
		return res, fmt.Errorf("%s: %w", scenario, err)
	}
	rn.logger.Infof("scenario passed in %s", res.Duration)
	return res, nil
}

// Run запускает сценарий по имени. Для register-reject args[0] имя
// устройства, иначе берется первое устройство из конфигурации.
func (r *Runner) Run(ctx context.Context, scenario string, args ...string) (*Result, error) {
	switch scenario {
	case NameRegister:
		return r.RegisterAll(ctx)
	case NameRegisterReject:
		if len(args) > 0 {
			return r.RegisterReject(ctx, args[0])
		}
		if len(r.cfg.Devices) == 0 {
			return nil, fmt.Errorf("%s: no device configured", scenario)
		}
		return r.RegisterReject(ctx, r.cfg.Devices[0].Name)
	case NameDirectMediaOff:
		return r.DirectMediaOff(ctx)
	}
	return nil, fmt.Errorf("unknown scenario %q", scenario)
}

// Names имена всех сценариев
func Names() []string {
	return []string{NameRegister, NameRegisterReject, NameDirectMediaOff}
}

func closedUnexpected() event.Handler {
	return event.NewUnexpected(event.NameIs(event.ConnectionClosed))
}

// RegisterAll подключает и регистрирует все устройства конфигурации
func (r *Runner) RegisterAll(ctx context.Context) (*Result, error) {
	if len(r.cfg.Devices) == 0 {
		return nil, fmt.Errorf("%s: no device configured", NameRegister)
	}
	return r.execute(ctx, NameRegister, r.cfg.Devices, func(rn *run) error {
		if err := rn.group.ConnectAll(0); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		if err := rn.group.RegisterAll(0); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		for _, d := range rn.group.Devices() {
			if !d.Registered() {
				return fmt.Errorf("%s is not registered", d.Name())
			}
		}
		return nil
	}, closedUnexpected())
}

// RegisterReject регистрирует устройство name, которое сервер должен
// отклонить: ровно один REGISTRATION_FAILURE и ни одного REGISTRATION_SUCCESS.
func (r *Runner) RegisterReject(ctx context.Context, name string) (*Result, error) {
	info := device.NewDeviceInfo(name)
	if len(r.cfg.Devices) > 0 {
		info.Type = r.cfg.Devices[0].Type
		info.ProtoVersion = r.cfg.Devices[0].ProtoVersion
	}

	// после отказа сервер вправе закрыть соединение
	return r.execute(ctx, NameRegisterReject, []device.DeviceInfo{info}, func(rn *run) error {
		if err := rn.group.ConnectAll(0); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		d := rn.group.Devices()[0]

		failures := event.NewInteger(0, 1, event.Eq)
		handlers := []event.Handler{
			event.NewMatch(event.NameIs(event.RegistrationFailure), func(event.Event) { failures.Add(1) }),
			event.NewUnexpected(event.NameIs(event.RegistrationSuccess)),
		}

		if err := d.Register(); err != nil {
			return err
		}
		if err := rn.group.WaitForConditionWithHandlers(failures, handlers, 0); err != nil {
			return fmt.Errorf("wait for rejection: %w", err)
		}

		more := event.NewInteger(1, 1, event.Gt)
		handlers[0] = event.NewMatch(event.NameIs(event.RegistrationFailure), func(event.Event) { more.Add(1) })
		err := rn.group.WaitForConditionWithHandlers(more, handlers, r.settle)
		switch {
		case err == nil:
			return fmt.Errorf("%s rejected more than once", name)
		case !errors.Is(err, reactor.ErrTimeout):
			return err
		}

		if d.Registered() {
			return fmt.Errorf("%s is registered after rejection", name)
		}
		return nil
	})
}

var (
	payloadFromA = []byte("from device 0")
	payloadFromB = []byte("from device 1")
)

func rtpFrom(d *device.Device, payload []byte) event.Matcher {
	return event.And(
		event.NameIs(event.RTPPacketReceived),
		event.FromDevice(d),
		func(ev event.Event) bool {
			data, ok := ev.Data.(event.RTPData)
			return ok && string(data.Packet.Payload) == string(payload)
		},
	)
}

// DirectMediaOff первое устройство звонит на номер 02, второе отвечает.
// Обе стороны должны получить OpenReceiveChannel и StartMediaTransmission
// с адресом сервера, после чего обмениваются RTP пакетами.
func (r *Runner) DirectMediaOff(ctx context.Context) (*Result, error) {
	if len(r.cfg.Devices) < 2 {
		return nil, fmt.Errorf("%s: two devices required, %d configured", NameDirectMediaOff, len(r.cfg.Devices))
	}
	return r.execute(ctx, NameDirectMediaOff, r.cfg.Devices[:2], func(rn *run) error {
		g := rn.group
		if err := g.ConnectAll(0); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		if err := g.RegisterAll(0); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		devs := g.Devices()
		a, b := devs[0], devs[1]

		if err := a.Call("02"); err != nil {
			return err
		}
		if err := g.WaitForEvent(event.And(event.NameIs(event.CallIncoming), event.FromDevice(b)), 0); err != nil {
			return fmt.Errorf("wait for incoming call: %w", err)
		}

		calls := b.Calls()
		if len(calls) == 0 {
			return fmt.Errorf("%s has no call", b.Name())
		}
		if err := calls[0].Answer(); err != nil {
			return err
		}

		err := g.WaitForAllEvents([]event.Matcher{
			event.And(event.MessageIs(message.OpenReceiveChannelID), event.FromDevice(a)),
			event.And(event.MessageIs(message.StartMediaTransmissionID), event.FromDevice(a)),
			event.And(event.MessageIs(message.OpenReceiveChannelID), event.FromDevice(b)),
			event.And(event.MessageIs(message.StartMediaTransmissionID), event.FromDevice(b)),
		}, 0)
		if err != nil {
			return fmt.Errorf("wait for media setup: %w", err)
		}

		callA, err := firstCall(a)
		if err != nil {
			return err
		}
		callB, err := firstCall(b)
		if err != nil {
			return err
		}
		for _, c := range []*device.Call{callA, callB} {
			if c.RemoteRTP.Addr() != rn.conn.HostIPv4 {
				return fmt.Errorf("%s: remote RTP %s, expected %s", c, c.RemoteRTP, rn.conn.HostIPv4)
			}
		}

		if err := a.SendRTP(callA, &rtp.Packet{SSRC: 1, Payload: payloadFromA}); err != nil {
			return err
		}
		if err := b.SendRTP(callB, &rtp.Packet{SSRC: 2, Payload: payloadFromB}); err != nil {
			return err
		}

		err = g.WaitForAllEvents([]event.Matcher{
			rtpFrom(a, payloadFromB),
			rtpFrom(b, payloadFromA),
		}, 0)
		if err != nil {
			return fmt.Errorf("wait for RTP: %w", err)
		}
		return nil
	}, closedUnexpected())
}

func firstCall(d *device.Device) (*device.Call, error) {
	calls := d.Calls()
	if len(calls) == 0 {
		return nil, fmt.Errorf("%s has no call", d.Name())
	}
	return calls[0], nil
}
