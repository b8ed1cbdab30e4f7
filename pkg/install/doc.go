// Package install runs a resolved task queue.
//
// For every queued task the [Executor] parses the task's requirements,
// orders the locked distributions they pull in with [lock.Lock.InstallOrder],
// drops what the target environment already has, looks up artifact metadata
// on the package index with a bounded worker pool, and hands the resulting
// [Plan] to an [Installer].
//
// A task runs only if every task it requires succeeded; otherwise it is
// skipped. With StopOnFirstError set, the first failure skips the rest of
// the queue.
//
// # Usage
//
//	exec := install.NewExecutor(lck, env, pypiClient, install.NewRecorder(), logger)
//	res, err := exec.Run(ctx, m)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Failed(), "tasks failed")
package install
