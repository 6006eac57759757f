package audio

import (
	"fmt"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// Pulse is a Mixer talking to the PulseAudio (or pipewire-pulse) server.
type Pulse struct {
	client *pulse.Client
}

// Open connects to the server named by the environment.
func Open() (*Pulse, error) {
	c, err := pulse.NewClient(
		pulse.ClientApplicationName("glue"),
		pulse.ClientApplicationIconName("audio-volume-high"),
	)
	if err != nil {
		return nil, err
	}
	return &Pulse{client: c}, nil
}

// Close drops the connection.
func (p *Pulse) Close() {
	p.client.Close()
}

func (p *Pulse) Level(d Device) (Level, error) {
	cv, muted, err := p.info(d)
	if err != nil {
		return Level{}, err
	}
	return Level{Volume: Percent(cv), Muted: muted}, nil
}

func (p *Pulse) SetVolume(d Device, percent int) error {
	cv, _, err := p.info(d)
	if err != nil {
		return err
	}
	cv = ChannelVolumes(len(cv), percent)

	name, err := p.defaultName(d)
	if err != nil {
		return err
	}
	switch d {
	case Mic:
		return p.client.RawRequest(&proto.SetSourceVolume{SourceIndex: proto.Undefined, SourceName: name, ChannelVolumes: cv}, nil)
	default:
		return p.client.RawRequest(&proto.SetSinkVolume{SinkIndex: proto.Undefined, SinkName: name, ChannelVolumes: cv}, nil)
	}
}

func (p *Pulse) SetMute(d Device, muted bool) error {
	name, err := p.defaultName(d)
	if err != nil {
		return err
	}
	switch d {
	case Mic:
		return p.client.RawRequest(&proto.SetSourceMute{SourceIndex: proto.Undefined, SourceName: name, Mute: muted}, nil)
	default:
		return p.client.RawRequest(&proto.SetSinkMute{SinkIndex: proto.Undefined, SinkName: name, Mute: muted}, nil)
	}
}

func (p *Pulse) defaultName(d Device) (string, error) {
	if d == Mic {
		s, err := p.client.DefaultSource()
		if err != nil {
			return "", fmt.Errorf("get default source: %w", err)
		}
		return s.ID(), nil
	}
	s, err := p.client.DefaultSink()
	if err != nil {
		return "", fmt.Errorf("get default sink: %w", err)
	}
	return s.ID(), nil
}

func (p *Pulse) info(d Device) (proto.ChannelVolumes, bool, error) {
	name, err := p.defaultName(d)
	if err != nil {
		return nil, false, err
	}
	if d == Mic {
		var reply proto.GetSourceInfoReply
		req := proto.GetSourceInfo{SourceIndex: proto.Undefined, SourceName: name}
		if err := p.client.RawRequest(&req, &reply); err != nil {
			return nil, false, fmt.Errorf("request source info: %w", err)
		}
		return reply.ChannelVolumes, reply.Mute, nil
	}
	var reply proto.GetSinkInfoReply
	req := proto.GetSinkInfo{SinkIndex: proto.Undefined, SinkName: name}
	if err := p.client.RawRequest(&req, &reply); err != nil {
		return nil, false, fmt.Errorf("request sink info: %w", err)
	}
	return reply.ChannelVolumes, reply.Mute, nil
}

// Percent averages channel volumes as a percentage of the nominal volume.
// Values above 100 are kept since devices can be boosted.
func Percent(cv proto.ChannelVolumes) int {
	if len(cv) == 0 {
		return 0
	}
	var sum float64
	for _, c := range cv {
		sum += float64(c) / float64(proto.VolumeNorm) * 100
	}
	return int(sum/float64(len(cv)) + 0.5)
}

// ChannelVolumes sets n channels to percent of the nominal volume. A device
// reporting no channels is treated as mono.
func ChannelVolumes(n, percent int) proto.ChannelVolumes {
	n = max(n, 1)
	v := uint32(uint64(max(percent, 0)) * uint64(proto.VolumeNorm) / 100)
	cv := make(proto.ChannelVolumes, n)
	for i := range cv {
		cv[i] = v
	}
	return cv
}
