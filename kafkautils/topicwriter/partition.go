package topicwriter

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hello-pionex/sentinel-httpclient/tinyutil"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

type PartitionConfig struct {
	MaxConns      int                     // max concurrent writer connections
	QueueCapacity int                     // buffered channel depth
	WaitInternal  time.Duration           // poll interval while batching
	MaxWait       func(int) time.Duration // max hold-off before flushing, by in-flight conn count
	MinBytes      int                     // below this, keep batching
	MaxBytes      int                     // batch cap, summed over Message.Value only
}

type Partition struct {
	brokers   []string
	topic     string
	partition int

	ch chan *WriteEvent

	pool  *WriterPool
	cfg   *PartitionConfig
	codec kafka.CompressionCodec
}

func (p *Partition) writeEvent(batch *WriteEvent) {
	p.ch <- batch
}

func (p *Partition) loop() {
	cfg := p.cfg

	weight := semaphore.NewWeighted(int64(p.cfg.MaxConns))

	var useConns tinyutil.Int64
	var pendingMessages tinyutil.Int64
	var pendingEvents tinyutil.Int64
	var wroteEvents tinyutil.Int64
	var wroteMessages tinyutil.Int64
	var wroteBytes tinyutil.Int64

	var batch *WriteEvent
	writeEventsPool := NewWriteEventsPool(10000)
	messagesPool := NewMessageSlicePool(10000)
	wg := sync.WaitGroup{}

	log := log.WithFields(logrus.Fields{
		"partition": p.partition,
		"topic":     p.topic,
	})

	go func() {
		for {
			time.Sleep(time.Second * 10)
			wroteMessageNum := wroteMessages.Swap(0)
			wroteEventNum := wroteEvents.Swap(0)
			wroteBytesNum := wroteBytes.Swap(0)
			pendingMsgNum := pendingMessages.Load()
			useConnNum := useConns.Load()
			pendingEventNum := pendingEvents.Load()
			pendingInChannelNum := len(p.ch)

			if wroteMessageNum == 0 &&
				wroteEventNum == 0 &&
				wroteBytesNum == 0 &&
				pendingMsgNum == 0 &&
				useConnNum == 0 &&
				pendingEventNum == 0 &&
				pendingInChannelNum == 0 {
				continue
			}

			log.WithFields(logrus.Fields{
				"pendingMessages":  pendingMsgNum,
				"useConns":         useConnNum,
				"pendingEvents":    pendingEventNum,
				"wroteMessages":    wroteMessageNum,
				"wroteEvents":      wroteEventNum,
				"wroteBytes":       wroteBytesNum,
				"pendingInChannel": pendingInChannelNum,
			}).Infoln("DebugEventPartitionStat")
		}
	}()

	for {
		containSequential := false
		batchs := writeEventsPool.Get()
		events := messagesPool.Get()

		totalByte := 0
		if batch == nil {
			batch = <-p.ch
		}

		batchs = append(batchs, batch)

		// cap the batch by accumulated byte size, not event count
		events = append(events, batch.Events...)
		totalByte += batch.TotalBytes
		containSequential = containSequential || batch.Sequential
		batch = nil

		// longer hold-off when fewer writer connections are busy
		maxWait := cfg.MaxWait(int(useConns.Load()))

		consumeAndCheck := func() bool {
			for {
				select {
				case batch = <-p.ch:
					// over budget: leave it queued for the next round
					if batch.TotalBytes+totalByte > cfg.MaxBytes {
						return true
					}

					totalByte += batch.TotalBytes
					containSequential = containSequential || batch.Sequential
					events = append(events, batch.Events...)
					batchs = append(batchs, batch)
					batch = nil
				default:
					return totalByte > cfg.MinBytes
				}
			}
		}

		WaitFor(consumeAndCheck, maxWait, cfg.WaitInternal)

		writeFn := func() {
			uuidStr := uuid.New().String()
			conn := p.pool.Get()
			eventLen := len(events)
			batchLen := len(batchs)

			defer func() {
				weight.Release(1)
				pendingMessages.Add(-int64(eventLen))
				wg.Done()
				useConns.Add(-1)
				p.pool.Put(conn)
				writeEventsPool.Put(batchs)
				messagesPool.Put(events)
				wroteMessages.Add(int64(eventLen))
				wroteEvents.Add(int64(batchLen))
				wroteBytes.Add(int64(totalByte))
			}()

			offset := conn.writeMust(p.codec, events, uuidStr)

			// report the assigned offset back to each waiting caller
			for _, b := range batchs {
				b.Offset = offset
				b.KafkaBatchId = uuidStr
				offset += int64(len(b.Events))
				if b.Wg != nil {
					b.Wg.Done()
				}
			}
		}

		// sequential batches must not overlap a prior in-flight write
		if containSequential {
			wg.Wait()
		}

		_ = weight.Acquire(context.Background(), 1)

		useConns.Add(1)

		wg.Add(1)
		pendingMessages.Add(int64(len(events)))
		go writeFn()

		if containSequential {
			wg.Wait()
		}
	}
}
