package trail

import (
	"bytes"
	"encoding/json"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/hello-pionex/sentinel-httpclient/kafkautils"
	"github.com/hello-pionex/sentinel-httpclient/kafkautils/topicwriter"
	"github.com/klauspost/compress/gzip"
	"github.com/segmentio/kafka-go"
)

// KafkaSink is the "detail" verbosity sink: every event is JSON
// encoded, with raw request/response bytes gzip-compressed, and
// published to a Kafka topic keyed by trail id — standing in for the
// original's SAS::Event::add_compressed_param. Built on
// kafkautils/topicwriter, adapted from a generic event-sourcing writer
// to carry trail events specifically.
type KafkaSink struct {
	mgr        *topicwriter.WriterMgr
	partitions int
	verbosity  Verbosity
}

// NewKafkaSink wires a Recorder-facing Sink onto an already-running
// WriterMgr (see kafkautils/topicwriter.NewWriterMgr).
func NewKafkaSink(mgr *topicwriter.WriterMgr, partitions int, verbosity Verbosity) *KafkaSink {
	return &KafkaSink{mgr: mgr, partitions: partitions, verbosity: verbosity}
}

// NewKafkaWriterMgr starts the partitioned writer pool backing a
// KafkaSink, using topicwriter's trail-tuned batching defaults.
// brokersCSV is a comma-separated broker list, matching
// profile.Kafka.Brokers's convention. It provisions the topic on first
// use; a topic that already exists is logged and ignored.
func NewKafkaWriterMgr(brokersCSV, topic string, partitions int) *topicwriter.WriterMgr {
	brokers := strings.Split(brokersCSV, ",")

	if _, err := kafkautils.CreateTopicWithSimpleCfg(&kafkautils.CreateTopicSimpleCfg{
		Brokers:           brokers,
		TopicName:         topic,
		Partitions:        partitions,
		ReplicationFactor: 1,
	}); err != nil {
		log.WithError(err).Warnln("CreateTrailTopic")
	}

	return topicwriter.NewWriterMgr(topicwriter.NewTrailConfig(brokers, topic, partitions))
}

func (s *KafkaSink) Emit(ev Event) {
	if s.verbosity == VerbosityNone || s.mgr == nil || s.partitions <= 0 {
		return
	}

	if s.verbosity == VerbosityProtocol {
		ev.RawRequest = nil
		ev.RawResponse = nil
	} else {
		ev.RawRequest = gzipCompress(ev.RawRequest)
		ev.RawResponse = gzipCompress(ev.RawResponse)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Warnln("MarshalTrailEvent")
		return
	}

	partition := int(hashTrail(ev.Trail) % uint32(s.partitions))

	var wg sync.WaitGroup
	wg.Add(1)
	s.mgr.WriteMustByPartition(partition, &topicwriter.WriteEvent{
		Events:     []kafka.Message{{Key: []byte(ev.Trail), Value: payload}},
		TotalBytes: len(payload),
		Wg:         &wg,
	})
	wg.Wait()
}

func gzipCompress(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		_ = w.Close()
		return nil
	}
	if err := w.Close(); err != nil {
		return nil
	}

	return buf.Bytes()
}

func hashTrail(trail string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trail))
	return h.Sum32()
}
