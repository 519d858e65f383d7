package app

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/track_recorder/internal/config"
	"github.com/relabs-tech/track_recorder/internal/gps"
	"github.com/relabs-tech/track_recorder/internal/track"
)

// RunRecorder opens the GPS serial port and records fixes to the track
// file until interrupted or the configured count is reached. Failure to
// open the port is fatal; everything the link throws at us afterwards is
// absorbed and the loop keeps waiting for the next sentence.
func RunRecorder(cfg config.Config) error {
	store := track.Load(cfg.Output)
	log.Infof("loaded %d existing fixes from %s", store.Size(), cfg.Output)

	var sinks []func(track.Fix)

	if cfg.MQTT.Enable {
		opts := mqtt.NewClientOptions().
			AddBroker(cfg.MQTT.Broker).
			SetClientID(cfg.MQTT.ClientID)

		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return fmt.Errorf("connecting to MQTT broker %s: %w", cfg.MQTT.Broker, token.Error())
		}
		defer client.Disconnect(250)
		log.Infof("mirroring fixes to MQTT broker %s topic %s", cfg.MQTT.Broker, cfg.MQTT.Topic)

		topic := cfg.MQTT.Topic
		sinks = append(sinks, func(fix track.Fix) {
			payload, err := json.Marshal(fix)
			if err != nil {
				log.Warnf("fix marshal: %v", err)
				return
			}
			token := client.Publish(topic, 0, true, payload)
			token.Wait()
			if token.Error() != nil {
				log.Warnf("MQTT publish: %v", token.Error())
			}
		})
	}

	if cfg.Live.Enable {
		feed := NewLiveFeed(store.Size())
		feed.Serve(cfg.Live.Addr)
		defer feed.Shutdown()
		sinks = append(sinks, feed.Broadcast)
	}

	serialOpts := serial.OpenOptions{
		PortName:   cfg.Serial.Port,
		BaudRate:   cfg.Serial.Baud,
		DataBits:   8,
		StopBits:   1,
		ParityMode: serial.PARITY_NONE,
		// Bounded wait per read: a quiet link yields an empty read so the
		// loop can notice an interrupt between sentences.
		MinimumReadSize:       0,
		InterCharacterTimeout: 2000,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", cfg.Serial.Port, err)
	}
	defer port.Close()
	log.Infof("serial port opened on %s at %d baud", cfg.Serial.Port, cfg.Serial.Baud)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	log.Info("waiting for GPS fix (interrupt to stop)")
	recorded, err := record(port, store, cfg.Count, sigCh, combine(sinks))
	log.Infof("stopped: %d new fixes recorded to %s", recorded, cfg.Output)
	return err
}

func combine(sinks []func(track.Fix)) func(track.Fix) {
	if len(sinks) == 0 {
		return nil
	}
	return func(fix track.Fix) {
		for _, sink := range sinks {
			sink(fix)
		}
	}
}

// record is the single-threaded read loop: one line in, at most one fix
// out, appended durably before the next read. The stop channel is checked
// once per iteration so an interrupt finishes the step in progress rather
// than abandoning it.
func record(r io.Reader, store *track.Store, limit int, stop <-chan os.Signal, sink func(track.Fix)) (int, error) {
	reader := bufio.NewReader(r)
	asm := gps.NewAssembler()
	recorded := 0
	carry := ""

	for {
		select {
		case <-stop:
			return recorded, nil
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrNoProgress) {
				// No data yet. Keep whatever partial line the timeout cut
				// off and glue it to the next read.
				carry += line
				continue
			}
			return recorded, fmt.Errorf("serial read: %w", err)
		}
		line = carry + line
		carry = ""

		sentence, reject := gps.DecodeLine([]byte(line))
		if reject != gps.RejectNone {
			log.Debugf("dropped line (%s): %q", reject, line)
			continue
		}

		fix, outcome := asm.Apply(time.Now().UTC(), sentence)
		if outcome != gps.OutcomeFix {
			log.Debugf("%s sentence: %s", sentence.DataType(), outcome)
			continue
		}

		if err := store.Append(*fix); err != nil {
			return recorded, fmt.Errorf("writing track: %w", err)
		}
		recorded++

		if sink != nil {
			sink(*fix)
		}

		log.Infof("[%4d] %s lat=%11.6f lon=%12.6f", recorded, fix.Timestamp, fix.Lat, fix.Lon)

		if limit > 0 && recorded >= limit {
			log.Infof("reached %d fixes, stopping", limit)
			return recorded, nil
		}
	}
}
