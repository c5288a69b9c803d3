package topicwriter

import (
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	kafkagzip "github.com/segmentio/kafka-go/gzip"
	"github.com/sirupsen/logrus"
)

// Partitioned, batched persistence of trail events to Kafka.

var (
	log = logrus.WithField("pkg", "trail-kafka")
)

type Config struct {
	Brokers    []string
	Topic      string
	Partitions int

	Config *PartitionConfig

	Codec kafka.CompressionCodec
}

// NewTrailConfig builds a Config tuned for small, latency-sensitive
// trail.Event payloads rather than bulk event-sourcing batches: short
// max wait, small batches, no minimum-bytes hold-off.
func NewTrailConfig(brokers []string, topic string, partitions int) *Config {
	return &Config{
		Brokers:    brokers,
		Topic:      topic,
		Partitions: partitions,
		Codec:      kafkagzip.NewCompressionCodec(),
		Config: &PartitionConfig{
			MaxConns:      4,
			QueueCapacity: 4096,
			WaitInternal:  time.Millisecond,
			MaxWait: func(int) time.Duration {
				return 20 * time.Millisecond
			},
			MinBytes: 0,
			MaxBytes: 1 << 20,
		},
	}
}

type WriteEvent struct {
	Events       []kafka.Message
	Wg           *sync.WaitGroup
	TotalBytes   int
	Offset       int64
	Sequential   bool
	KafkaBatchId string
}

type WriterMgr struct {
	brokers       []string
	topic         string
	partitionList map[int]*Partition
	partitions    int64
	codec         kafka.CompressionCodec
}

func NewWriterMgr(cfg *Config) *WriterMgr {
	mgr := &WriterMgr{
		brokers:       cfg.Brokers,
		topic:         cfg.Topic,
		partitionList: make(map[int]*Partition),
		partitions:    int64(cfg.Partitions),
		codec:         cfg.Codec,
	}

	for i := 0; i < cfg.Partitions; i++ {
		mgr.partitionList[i] = &Partition{
			brokers:   cfg.Brokers,
			topic:     cfg.Topic,
			partition: i,
			ch:        make(chan *WriteEvent, cfg.Config.QueueCapacity),
			pool:      NewWritePool(cfg.Brokers, cfg.Topic, int64(i)),
			cfg:       cfg.Config,
			codec:     cfg.Codec,
		}

		go mgr.partitionList[i].loop()
	}

	return mgr
}

func (writerMgr *WriterMgr) WriteMustByPartition(partition int, batch *WriteEvent) {
	writerMgr.partitionList[partition].writeEvent(batch)
}

func (writerMgr *WriterMgr) TestConnect() error {
	for _, writer := range writerMgr.partitionList {
		conn := writer.pool.Get()
		if err := conn.connect(); err != nil {
			log.WithError(err).Errorln("writer.connect")
			return err
		}
		writer.pool.Put(conn)
	}

	return nil
}
