package kafkautils

import (
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

func createTopic(brokerList []string, returnPartitions bool, topicsArg kafka.TopicConfig) ([]kafka.Partition, error) {
	log := logrus.WithField("topicName", topicsArg.Topic)

	if len(brokerList) == 0 {
		return nil, fmt.Errorf("empty brokers")
	}
	// any broker can answer Controller(); pick one at random to spread load
	brokerSelected := brokerList[rand.Intn(len(brokerList))]
	conn, err := kafka.Dial("tcp", brokerSelected)
	if err != nil {
		log.WithError(err).Errorln("kafka.Dial brokerSelected")
		return nil, fmt.Errorf("connect broker(%v) failed:%v", brokerSelected, err)
	}

	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		log.WithError(err).Errorln("conn.Controller")
		return nil, fmt.Errorf("find controller broker failed:%v", err)
	}

	var controllerConn *kafka.Conn
	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	controllerConn, err = kafka.Dial("tcp", controllerAddr)
	if err != nil {
		log.WithError(err).Errorln("Dial controllerAddr")
		return nil, fmt.Errorf("connect controller(%v) failed:%v", controllerAddr, err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(topicsArg)
	if err != nil {
		log.WithError(err).Errorln("controllerConn.CreateTopics")
		return nil, err
	}

	var returnPartitionList []kafka.Partition
	if returnPartitions {
		returnPartitionList, err = controllerConn.ReadPartitions(topicsArg.Topic)
		if err != nil {
			return nil, err
		}
	}

	log = log.WithFields(logrus.Fields{
		"brokers":    brokerList,
		"partitions": topicsArg.NumPartitions,
		"replica":    topicsArg.ReplicationFactor,
	})

	for _, value := range topicsArg.ConfigEntries {
		log = log.WithFields(logrus.Fields{
			value.ConfigName: value.ConfigValue,
		})
	}

	log.Infoln("CreateTopic")
	return returnPartitionList, nil
}

type CreateTopicSimpleCfg struct {
	Brokers           []string
	TopicName         string
	ReplicationFactor int // affects durability vs. availability; 3 in production
	Partitions        int
	RetentionTime     *time.Duration
	RetentionBytes    *int64
	// UncleanLeaderElectionEnable, if true, allows a broker outside the
	// ISR to become leader when every ISR member is down (lossy).
	UncleanLeaderElectionEnable *bool
	// MinInSyncReplicas bounds how many replicas must ack a write;
	// too low risks losing acked writes on a replica failure.
	MinInSyncReplicas *int
	ReturnPartitions  bool
	UseLogAppendTime  bool
}

// CreateTopicWithSimpleCfg is the common-case topic provisioning path.
func CreateTopicWithSimpleCfg(cfg *CreateTopicSimpleCfg) ([]kafka.Partition, error) {
	entries := make([]kafka.ConfigEntry, 0, 3)

	if cfg.MinInSyncReplicas != nil {
		entries = append(entries, kafka.ConfigEntry{
			ConfigName:  "min.insync.replicas",
			ConfigValue: fmt.Sprintf("%d", *cfg.MinInSyncReplicas),
		})
	}

	if cfg.UncleanLeaderElectionEnable != nil {
		entries = append(entries, kafka.ConfigEntry{
			ConfigName:  "unclean.leader.election.enable",
			ConfigValue: fmt.Sprintf("%v", *cfg.UncleanLeaderElectionEnable),
		})
	}

	if cfg.RetentionTime != nil {
		entries = append(entries, kafka.ConfigEntry{
			ConfigName:  "retention.ms",
			ConfigValue: fmt.Sprintf("%d", int64(*cfg.RetentionTime)/1e6),
		})
	}

	if cfg.RetentionBytes != nil {
		entries = append(entries, kafka.ConfigEntry{
			ConfigName:  "retention.bytes",
			ConfigValue: fmt.Sprintf("%d", *cfg.RetentionBytes),
		})
	}

	if cfg.UseLogAppendTime {
		entries = append(entries, kafka.ConfigEntry{
			ConfigName:  "message.timestamp.type",
			ConfigValue: "LogAppendTime",
		})
	}

	return createTopic(cfg.Brokers, cfg.ReturnPartitions, kafka.TopicConfig{
		Topic:             cfg.TopicName,
		NumPartitions:     cfg.Partitions,
		ReplicationFactor: cfg.ReplicationFactor,
		ConfigEntries:     entries,
	})
}
