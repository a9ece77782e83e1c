package servicebus

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
	"vidmarket/infrastructure/logger"
)

// NewServiceBus connects the Azure Service Bus namespace carrying the
// transcode job queue.
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

// TranscodeQueue hands uploaded videos to the transcoding worker.
type TranscodeQueue struct {
	client *azservicebus.Client
	queue  string
}

func NewTranscodeQueue(client *azservicebus.Client, queue string) repository.ITranscodeQueue {
	return &TranscodeQueue{client: client, queue: queue}
}

func (q *TranscodeQueue) Enqueue(ctx context.Context, job model.TranscodeJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	sender, err := q.client.NewSender(q.queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return err
	}
	defer func() {
		if closeErr := sender.Close(context.Background()); closeErr != nil {
			logger.GetLogger().WithField("error", closeErr).Error("Error while closing sender.")
		}
	}()

	msg := &azservicebus.Message{Body: body}
	if err = sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending transcode job.")
		return err
	}
	return nil
}
