package server

import (
	"encoding/json"
	"path"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const policyEC2AssumeRole = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Action": "sts:AssumeRole",
		"Principal": {"Service": "ec2.amazonaws.com"}
	}]
}`

// ManagedPolicies are attached to every server role.
var ManagedPolicies = []string{
	"arn:aws:iam::aws:policy/AmazonSSMManagedInstanceCore",
	"arn:aws:iam::aws:policy/CloudWatchAgentServerPolicy",
}

type statement struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource []string `json:"Resource"`
}

type policyDocument struct {
	Version   string      `json:"Version"`
	Statement []statement `json:"Statement"`
}

func marshalPolicy(stmts ...statement) (string, error) {
	doc, err := json.Marshal(policyDocument{Version: "2012-10-17", Statement: stmts})
	if err != nil {
		return "", err
	}
	return string(doc), nil
}

// SelfAccessPolicy lets the instance manage itself and read its own tags.
func SelfAccessPolicy(instanceArn string) (string, error) {
	return marshalPolicy(
		statement{Effect: "Allow", Action: []string{"ec2:*"}, Resource: []string{instanceArn}},
		statement{Effect: "Allow", Action: []string{"ec2:Describe*"}, Resource: []string{"*"}},
	)
}

// DNSUpdatePolicy lets the instance upsert records in one hosted zone.
func DNSUpdatePolicy(zoneID string) (string, error) {
	return marshalPolicy(
		statement{
			Effect:   "Allow",
			Action:   []string{"route53:ChangeResourceRecordSets"},
			Resource: []string{"arn:aws:route53:::hostedzone/" + zoneID},
		},
		statement{
			Effect:   "Allow",
			Action:   []string{"route53:ListHostedZones", "route53:ListHostedZonesByName"},
			Resource: []string{"*"},
		},
	)
}

type identity struct {
	Role    *iam.Role
	Profile *iam.InstanceProfile
}

func newIdentity(ctx *pulumi.Context, resource string) (*identity, error) {
	roleResource := resource + "-role"
	role, err := iam.NewRole(ctx, roleResource, &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(policyEC2AssumeRole),
	})
	if err != nil {
		return nil, err
	}
	for _, arn := range ManagedPolicies {
		_, err = iam.NewRolePolicyAttachment(ctx, roleResource+"-"+path.Base(arn), &iam.RolePolicyAttachmentArgs{
			Role:      role.Name,
			PolicyArn: pulumi.String(arn),
		})
		if err != nil {
			return nil, err
		}
	}
	profile, err := iam.NewInstanceProfile(ctx, resource+"-profile", &iam.InstanceProfileArgs{
		Role: role.Name,
	})
	if err != nil {
		return nil, err
	}
	return &identity{Role: role, Profile: profile}, nil
}

func newSelfAccessPolicy(ctx *pulumi.Context, resource string, role *iam.Role, instanceArn pulumi.StringOutput) error {
	doc := instanceArn.ApplyT(SelfAccessPolicy).(pulumi.StringOutput)
	_, err := iam.NewRolePolicy(ctx, resource+"-role-self-access", &iam.RolePolicyArgs{
		Role:   role.Name,
		Policy: doc,
	})
	return err
}

func newDNSUpdatePolicy(ctx *pulumi.Context, resource string, role *iam.Role, zoneID string) error {
	doc, err := DNSUpdatePolicy(zoneID)
	if err != nil {
		return err
	}
	_, err = iam.NewRolePolicy(ctx, resource+"-role-dns-update", &iam.RolePolicyArgs{
		Role:   role.Name,
		Policy: pulumi.String(doc),
	})
	return err
}
