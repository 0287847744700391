// Command coordinatorsim drives a single in-process Coordinator through a
// simulated run: a fixed client population joins, ticks advance wall-clock
// time, and witnesses/checkpoints are submitted by whichever committee
// member the deterministic shuffle elects. It exists to exercise the state
// machine end to end without a real network of trainers.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/luxfi/ids"

	"github.com/PsycheFoundation/psyche-coordinator-go/authorization"
	"github.com/PsycheFoundation/psyche-coordinator-go/committee"
	"github.com/PsycheFoundation/psyche-coordinator-go/config"
	"github.com/PsycheFoundation/psyche-coordinator-go/coordinator"
	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
	loglib "github.com/PsycheFoundation/psyche-coordinator-go/log"
	"github.com/PsycheFoundation/psyche-coordinator-go/metrics"
	"github.com/PsycheFoundation/psyche-coordinator-go/model"
	"github.com/PsycheFoundation/psyche-coordinator-go/round"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	numClients := flag.Int("clients", 4, "Number of simulated clients")
	totalSteps := flag.Int("steps", 20, "Total training steps for the run")
	roundsPerEpoch := flag.Int("rounds-per-epoch", 5, "Rounds per epoch")
	batchSize := flag.Int("batch-size", 8, "Global batch size")
	witnessNodes := flag.Int("witness-nodes", 1, "Witness committee size")
	tickSeconds := flag.Int("tick-seconds", 1, "Wall-clock seconds advanced per simulated tick")
	maxTicks := flag.Int("max-ticks", 500, "Safety bound on the number of ticks to run before giving up")
	verbose := flag.Bool("verbose", false, "Print every state transition")
	flag.Parse()

	authority := ids.BuildTestNodeID([]byte("main-authority"))
	log := loglib.New("coordinatorsim")

	m, err := metrics.NewCoordinator(prometheus.NewRegistry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "registering metrics: %v\n", err)
		os.Exit(1)
	}

	c := coordinator.New(authority, log, m)

	clients := make([]ids.NodeID, *numClients)
	for i := range clients {
		clients[i] = ids.BuildTestNodeID([]byte(fmt.Sprintf("client-%d", i)))
	}

	for _, client := range clients {
		c.JoinAuthority.Authorize(client, authorization.JoinRun)
		if _, err := c.Apply(coordinator.Join{ClientID: client, AuthUser: client}); err != nil {
			fmt.Fprintf(os.Stderr, "joining %s: %v\n", client, err)
			os.Exit(1)
		}
	}

	cfg := config.DefaultRunConfig()
	cfg.MinClients = uint32(*numClients)
	cfg.InitMinClients = uint32(*numClients)
	cfg.GlobalBatchSize = uint32(*batchSize)
	cfg.WitnessNodes = uint32(*witnessNodes)
	cfg.TotalSteps = uint32(*totalSteps)
	cfg.RoundsPerEpoch = uint32(*roundsPerEpoch)
	cfg.WarmupTime = 0
	cfg.MaxRoundTrainTime = time.Second
	cfg.RoundWitnessTime = time.Second
	cfg.CooldownTime = 0

	if _, err := c.Apply(coordinator.SetConfig{Signer: authority, Config: cfg}); err != nil {
		fmt.Fprintf(os.Stderr, "setting config: %v\n", err)
		os.Exit(1)
	}
	run := model.Model{MaxSeqLen: 2048, Checkpoint: model.P2PCheckpoint()}
	if _, err := c.Apply(coordinator.SetModel{Signer: authority, Model: run}); err != nil {
		fmt.Fprintf(os.Stderr, "setting model: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Coordinator Simulation ===\n")
	fmt.Printf("clients=%d steps=%d rounds_per_epoch=%d batch_size=%d witness_nodes=%d\n",
		*numClients, *totalSteps, *roundsPerEpoch, *batchSize, *witnessNodes)

	now := time.Now().Unix()
	lastState := c.RunState

	for tick := 0; tick < *maxTicks; tick++ {
		now += int64(*tickSeconds)

		result, err := c.Apply(coordinator.Tick{NowUnix: now})
		if err != nil {
			if errors.Is(err, coordinator.ErrHalted) {
				fmt.Printf("run finished after %d ticks, final state=%s\n", tick, c.RunState)
				return
			}
			fmt.Fprintf(os.Stderr, "tick %d: %v\n", tick, err)
			os.Exit(1)
		}

		if c.RunState != lastState {
			if *verbose {
				fmt.Printf("tick %4d: %s -> %s (epoch=%d step=%d)\n",
					tick, lastState, c.RunState, c.Progress.Epoch, c.Progress.Step)
			}
			lastState = c.RunState
		}

		submitWitnesses(c, *verbose)
		submitCheckpoint(c, *verbose)

		if result.EpochAdvanced && *verbose {
			fmt.Printf("tick %4d: epoch %d settled\n", tick, c.Progress.Epoch-1)
		}
	}

	fmt.Printf("reached max-ticks=%d without finishing, final state=%s\n", *maxTicks, c.RunState)
}

// submitWitnesses has every committee member currently elected to witness
// the round's head submit an attestation: for each of the round's batch
// tasks, the witness commits to a (simulated) payload hash, verifies its own
// commitment before trusting it, and folds every commitment's data hash into
// a single broadcast merkle root, mirroring the honest-majority path rather
// than exercising disputes.
func submitWitnesses(c *coordinator.Coordinator, verbose bool) {
	head, ok := c.Rounds.Head()
	if !ok || c.EpochRoster == nil {
		return
	}

	n := uint64(c.EpochRoster.Len())
	for i := uint64(0); i < n; i++ {
		if head.HasWitnessFrom(i) {
			continue
		}
		position, elected := committee.IsWitness(i, n, head.RandomSeed, c.Config.WitnessNodes)
		if !elected {
			continue
		}

		w := buildWitness(head, c.Progress.Step, i)

		_, err := c.Apply(coordinator.WitnessSubmission{
			RoundHeight: head.Height,
			Proof:       round.WitnessProof{Position: position, Index: i},
			Witness:     w,
		})
		if err != nil && verbose {
			fmt.Printf("witness submission from committee index %d rejected: %v\n", i, err)
		}
	}
}

// buildWitness commits to a simulated payload hash for every batch task the
// round assigned, verifies each commitment against the payload hash it
// claims to bind to, and merkles the resulting data hashes into a single
// broadcast root.
func buildWitness(head *round.Round, step uint32, witnessIndex uint64) round.Witness {
	commitments := make([]cryptoprim.Commitment, 0, len(head.TieBreakerTasks))
	leaves := make([]cryptoprim.Hash, 0, len(head.TieBreakerTasks))

	for _, task := range head.TieBreakerTasks {
		payloadHash := cryptoprim.SHA256(fmt.Appendf(nil, "round-%d-task-%d", head.Height, task))
		commitment := cryptoprim.NewCommitment(step, task, witnessIndex, payloadHash)
		if !commitment.Verify(payloadHash) {
			continue
		}
		commitments = append(commitments, commitment)
		leaves = append(leaves, commitment.DataHash)
	}

	return round.Witness{
		Commitments:     commitments,
		BroadcastMerkle: cryptoprim.MerkleRoot(leaves),
	}
}

// submitCheckpoint has the elected checkpointer publish a fixed repo
// revision once the run enters Cooldown.
func submitCheckpoint(c *coordinator.Coordinator, verbose bool) {
	if c.RunState != coordinator.Cooldown || c.Checkpoint == nil || c.EpochRoster == nil {
		return
	}
	if _, _, ok := c.Checkpoint.Accepted(); ok {
		return
	}

	head, ok := c.Rounds.Head()
	if !ok {
		return
	}
	n := uint64(c.EpochRoster.Len())
	for i := uint64(0); i < n; i++ {
		if !committee.IsCheckpointer(i, n, head.RandomSeed) {
			continue
		}
		client, ok := c.EpochRoster.At(int(i))
		if !ok {
			continue
		}
		_, err := c.Apply(coordinator.CheckpointSubmission{
			ClientID: client.ID,
			RepoID:   "psyche-sim/model",
			Revision: fmt.Sprintf("epoch-%d", c.Progress.Epoch),
		})
		if err != nil && verbose {
			fmt.Printf("checkpoint submission from committee index %d rejected: %v\n", i, err)
		}
	}
}
