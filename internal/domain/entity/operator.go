package entity

// OperatorState состояние оператора в диалоге с ботом
type OperatorState string

const (
	StateIdle       OperatorState = "idle"       // Мониторинг выключен
	StateMonitoring OperatorState = "monitoring" // Ждём кадры с камеры
	StateProcessing OperatorState = "processing" // Кадр в обработке
)

// Operator оператор, присылающий кадры через бота
type Operator struct {
	ID     int64         // Telegram User ID
	ChatID int64         // Telegram Chat ID
	State  OperatorState // Текущее состояние
}

// NewOperator создаёт оператора с выключенным мониторингом
func NewOperator(userID, chatID int64) *Operator {
	return &Operator{
		ID:     userID,
		ChatID: chatID,
		State:  StateIdle,
	}
}

// SetState обновляет состояние оператора
func (o *Operator) SetState(state OperatorState) {
	o.State = state
}

// Monitoring сообщает, принимает ли оператор кадры на анализ
func (o *Operator) Monitoring() bool {
	return o.State == StateMonitoring
}
