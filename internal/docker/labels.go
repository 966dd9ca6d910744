// Package docker provides clawker-specific Docker middleware.
// It wraps pkg/whail with clawker's label conventions and naming schemes.
package docker

import (
	"time"

	"github.com/schmitthub/clawker/pkg/whail"
)

// Clawker label keys for managed resources.
const (
	// LabelPrefix is the prefix for all clawker labels.
	LabelPrefix = "com.clawker."

	// LabelManaged marks a resource as managed by clawker.
	LabelManaged = LabelPrefix + "managed"

	// LabelProject identifies the project name.
	LabelProject = LabelPrefix + "project"

	// LabelAgent identifies the agent name within a project.
	LabelAgent = LabelPrefix + "agent"

	// LabelVersion stores the clawker version that created the resource.
	LabelVersion = LabelPrefix + "version"

	// LabelImage stores the source image tag for containers.
	LabelImage = LabelPrefix + "image"

	// LabelCreated stores the creation timestamp.
	LabelCreated = LabelPrefix + "created"

	// LabelWorkdir stores the host working directory.
	LabelWorkdir = LabelPrefix + "workdir"

	// LabelPurpose identifies the purpose of a volume.
	LabelPurpose = LabelPrefix + "purpose"

	// LabelBaseImage marks the default base image built by clawker.
	LabelBaseImage = LabelPrefix + "base-image"

	// LabelFlavor stores the Linux flavor of a base image.
	LabelFlavor = LabelPrefix + "flavor"

	// LabelTest marks resources created by tests.
	LabelTest = LabelPrefix + "test"

	// LabelTestName stores the name of the test that created a resource.
	LabelTestName = LabelPrefix + "test.name"
)

// ManagedLabelValue is the value for the managed label.
const ManagedLabelValue = "true"

// EngineLabelPrefix is the label prefix handed to whail.Engine; the engine
// appends "." + EngineManagedLabel to form the full managed key.
const EngineLabelPrefix = "com.clawker"

// EngineManagedLabel is the managed label suffix handed to whail.Engine.
const EngineManagedLabel = "managed"

// ContainerLabels returns labels for a new container.
func ContainerLabels(project, agent, version, image, workdir string) map[string]string {
	return map[string]string{
		LabelManaged: ManagedLabelValue,
		LabelProject: project,
		LabelAgent:   agent,
		LabelVersion: version,
		LabelImage:   image,
		LabelCreated: time.Now().Format(time.RFC3339),
		LabelWorkdir: workdir,
	}
}

// VolumeLabels returns labels for a new volume.
func VolumeLabels(project, agent, purpose string) map[string]string {
	return map[string]string{
		LabelManaged: ManagedLabelValue,
		LabelProject: project,
		LabelAgent:   agent,
		LabelPurpose: purpose,
	}
}

// ImageLabels returns labels for a built image.
func ImageLabels(project, version string) map[string]string {
	return map[string]string{
		LabelManaged: ManagedLabelValue,
		LabelProject: project,
		LabelVersion: version,
		LabelCreated: time.Now().Format(time.RFC3339),
	}
}

// NetworkLabels returns labels for a new network.
func NetworkLabels() map[string]string {
	return map[string]string{
		LabelManaged: ManagedLabelValue,
	}
}

// ClawkerFilter returns Docker filters for listing all clawker resources.
func ClawkerFilter() whail.Filters {
	return whail.Filters{}.
		Add("label", LabelManaged+"="+ManagedLabelValue)
}

// ProjectFilter returns Docker filters for a specific project.
func ProjectFilter(project string) whail.Filters {
	return whail.Filters{}.
		Add("label", LabelManaged+"="+ManagedLabelValue).
		Add("label", LabelProject+"="+project)
}

// AgentFilter returns Docker filters for a specific agent within a project.
func AgentFilter(project, agent string) whail.Filters {
	return whail.Filters{}.
		Add("label", LabelManaged+"="+ManagedLabelValue).
		Add("label", LabelProject+"="+project).
		Add("label", LabelAgent+"="+agent)
}
