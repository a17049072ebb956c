package domain

// Message é a base comum de comandos, consultas e eventos.
type Message[T any] interface {
	Payload() T
}

// Command representa uma intenção de alterar o estado do sistema.
type Command[T any] interface {
	Message[T]
	CommandName() string
}

// Query representa uma consulta no sistema.
type Query[T any] interface {
	Message[T]
	QueryName() string
}

// Event representa um fato ocorrido no sistema.
type Event[T any] interface {
	Message[T]
	EventName() string
}
