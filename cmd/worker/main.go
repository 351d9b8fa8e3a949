package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mbaisi200/passaporte-sistema/internal/cache"
	"github.com/mbaisi200/passaporte-sistema/internal/config"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
)

// Worker de notificações: consome a fila do Redis e dispara os avisos de
// formulário recebido e redefinição de senha.
func main() {
	pflag.Parse()

	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()

	logger.Info("iniciando worker de notificações")

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to initialize redis client", zap.Error(err))
	}
	defer redisClient.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	stopChan := make(chan struct{})

	go processQueue(redisClient, logger, stopChan)

	<-sigChan
	logger.Info("recebido sinal de interrupção, encerrando worker...")
	close(stopChan)

	// Dá um tempo para o item em andamento terminar.
	time.Sleep(2 * time.Second)
	logger.Info("worker encerrado")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var logger *zap.Logger
	var err error
	if cfg.App.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func processQueue(client *cache.Client, logger *zap.Logger, stopChan chan struct{}) {
	ctx := context.Background()

	for {
		select {
		case <-stopChan:
			logger.Info("parando o consumo da fila")
			return
		default:
			event, err := client.DequeueNotify(ctx, 5*time.Second)
			if err != nil {
				logger.Error("erro ao ler da fila", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			if event == nil {
				continue
			}

			handleEvent(logger, *event)
		}
	}
}

// handleEvent entrega a notificação. O envio real de email fica atrás do
// gateway configurado na infraestrutura; aqui registramos a entrega.
// TODO: plugar o provedor SMTP quando a conta transacional for criada.
func handleEvent(logger *zap.Logger, event models.NotifyEvent) {
	switch event.Type {
	case "password_reset":
		logger.Info("notificação de redefinição de senha",
			zap.String("email", event.Email))
	case "submission_received":
		logger.Info("notificação de formulário recebido",
			zap.String("email", event.Email),
			zap.String("cpf", event.CPF))
	default:
		logger.Warn("tipo de evento desconhecido", zap.String("type", event.Type))
	}
}
