package buildkit

import "reflect"

// buildActiveSteps computes the ActiveImageBuildStep set for every
// currently active vertex, in stepNumber order.
func buildActiveSteps(t *transcript) []ActiveImageBuildStep {
	active := make([]*vertexInfo, 0, len(t.activeVertices))
	for d := range t.activeVertices {
		if info, ok := t.startedVertices[d]; ok {
			active = append(active, info)
		}
	}
	orderInfosByStep(active)

	steps := make([]ActiveImageBuildStep, 0, len(active))
	for _, info := range active {
		steps = append(steps, buildStepFor(info))
	}
	return steps
}

func orderInfosByStep(infos []*vertexInfo) {
	for i := 1; i < len(infos); i++ {
		for j := i; j > 0 && infos[j-1].stepNumber > infos[j].stepNumber; j-- {
			infos[j-1], infos[j] = infos[j], infos[j-1]
		}
	}
}

// buildStepFor derives one vertex's ActiveImageBuildStep: pick the
// least-advanced-with-activity operation to report, then sum bytes across
// layers at and past that point.
func buildStepFor(info *vertexInfo) ActiveImageBuildStep {
	step := ActiveImageBuildStep{
		StepIndex: info.stepNumber - 1,
		Name:      info.name,
	}
	if len(info.layerOrder) == 0 {
		return step
	}
	step.HasLayers = true

	var anyDownloading, anyExtracting, allPullComplete, allDownloadComplete bool
	allPullComplete = true
	allDownloadComplete = true
	for _, id := range info.layerOrder {
		l := info.layers[id]
		switch l.currentOperation {
		case opDownloading:
			anyDownloading = true
			allPullComplete = false
			allDownloadComplete = false
		case opExtracting:
			anyExtracting = true
			allPullComplete = false
			allDownloadComplete = false
		case opDownloadComplete:
			allPullComplete = false
		case opPullComplete:
			allDownloadComplete = false
		}
	}

	var report layerOperation
	switch {
	case anyDownloading:
		report = opDownloading
	case anyExtracting:
		report = opExtracting
	case allPullComplete:
		report = opPullComplete
	case allDownloadComplete:
		report = opDownloadComplete
	default:
		report = opPullComplete
	}
	step.Operation = report.String()

	var completed, total int64
	for _, id := range info.layerOrder {
		l := info.layers[id]
		total += l.totalBytes
		switch {
		case l.currentOperation == report:
			completed += l.completedBytes
		case l.currentOperation > report:
			completed += l.totalBytes
		}
	}
	step.Completed = completed
	step.Total = total
	return step
}

// maybeEmitProgress builds the active-steps snapshot and, if it is
// non-empty and differs from the last emission, emits a BuildProgress event
// and remembers the new snapshot.
func (t *transcript) maybeEmitProgress(onEvent func(BuildEvent)) {
	steps := buildActiveSteps(t)
	if len(steps) == 0 {
		return
	}
	if reflect.DeepEqual(steps, t.lastActiveSteps) {
		return
	}
	t.lastActiveSteps = steps
	if onEvent != nil {
		onEvent(BuildProgress{ActiveSteps: steps})
	}
}
