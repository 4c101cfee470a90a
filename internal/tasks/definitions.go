package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	// Register general tasks
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Register payment maintenance tasks
	RegisterHandler(ExpirePendingPaymentsTask.TaskID(), ExpirePendingPaymentsTask.HandleExecution)
}
