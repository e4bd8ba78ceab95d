package logging

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Компоненты симуляции с собственными файлами логов
const (
	ComponentWorld   = "world"
	ComponentTerrain = "terrain"
	ComponentSim     = "sim"
)

// LoggerManager выдаёт по одному логгеру на компонент
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает общий для процесса менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{loggers: make(map[string]*Logger)}
	})
	return globalManager
}

// Component возвращает логгер компонента, создавая его при первом обращении.
// Если файл логов открыть не удалось, компонент пишет только в консоль.
func (lm *LoggerManager) Component(name string) *Logger {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[name]; ok {
		return l
	}
	l, err := NewLogger(name)
	if err != nil {
		LogWarn("logger %s: %v, пишем только в консоль", name, err)
		l = &Logger{
			component:       name,
			consoleLogger:   defaultLogger.consoleLogger,
			minConsoleLevel: defaultLogger.minConsoleLevel,
			minFileLevel:    ERROR + 1,
		}
	}
	lm.loggers[name] = l
	return l
}

// Components возвращает имена выданных логгеров по алфавиту
func (lm *LoggerManager) Components() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	out := make([]string, 0, len(lm.loggers))
	for name := range lm.loggers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for name, l := range lm.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close logger %s: %w", name, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// GetComponentLogger - сокращение для GetLoggerManager().Component
func GetComponentLogger(name string) *Logger {
	return GetLoggerManager().Component(name)
}

func GetWorldLogger() *Logger   { return GetComponentLogger(ComponentWorld) }
func GetTerrainLogger() *Logger { return GetComponentLogger(ComponentTerrain) }
func GetSimLogger() *Logger     { return GetComponentLogger(ComponentSim) }
