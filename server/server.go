package server

import (
	"fmt"
	"path/filepath"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/route53"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/abnormalend/jitsi-infra/internal/jitsi"
)

const recordTTL = 300

type Config struct {
	AWS      *jitsi.AWS
	Settings *jitsi.Config
}

// Server is the set of resources declared for one Jitsi server.
type Server struct {
	SecurityGroup *ec2.SecurityGroup
	Role          *iam.Role
	Instance      *ec2.Instance
	Record        *route53.Record // nil without a zone
}

func New(ctx *pulumi.Context, resource string, serverConfig *Config) (*Server, error) {
	settings := serverConfig.Settings
	if settings.HasZone() && serverConfig.AWS.Zone == nil {
		return nil, fmt.Errorf("zone %q was not resolved", settings.ZoneName)
	}
	srv := &Server{}
	var err error

	srv.SecurityGroup, err = newSecurityGroup(ctx, resource+"-sg", serverConfig.AWS.VpcID, IngressRules(settings))
	if err != nil {
		return nil, err
	}
	id, err := newIdentity(ctx, resource)
	if err != nil {
		return nil, err
	}
	srv.Role = id.Role

	keyName, err := keyPair(ctx, resource, settings)
	if err != nil {
		return nil, err
	}
	userData, err := RenderUserData(settings)
	if err != nil {
		return nil, fmt.Errorf("rendering user data: %w", err)
	}
	instanceArgs := &ec2.InstanceArgs{
		IamInstanceProfile:  id.Profile.Name,
		SubnetId:            pulumi.String(serverConfig.AWS.SubnetID),
		Ami:                 pulumi.String(serverConfig.AWS.AMI),
		InstanceType:        pulumi.String(settings.InstanceType),
		VpcSecurityGroupIds: pulumi.StringArray{srv.SecurityGroup.ID()},
		MetadataOptions: ec2.InstanceMetadataOptionsArgs{
			HttpPutResponseHopLimit: pulumi.Int(2),
			HttpTokens:              pulumi.String("required"),
		},
		Tags: pulumi.StringMap{
			"Name":         pulumi.String(settings.Hostname),
			"dns_hostname": pulumi.String(settings.Hostname),
			"dns_zone":     pulumi.String(settings.ZoneName),
		},
		UserData:                pulumi.String(userData),
		UserDataReplaceOnChange: pulumi.Bool(true),
	}
	if keyName != nil {
		instanceArgs.KeyName = keyName
	}
	srv.Instance, err = ec2.NewInstance(ctx, resource, instanceArgs, pulumi.DeleteBeforeReplace(true))
	if err != nil {
		return nil, err
	}

	if settings.HasZone() {
		recordOpts := []pulumi.ResourceOption{pulumi.RetainOnDelete(false)}
		if settings.UpdatesOwnDNS() {
			// the instance rewrites the record on every boot
			recordOpts = append(recordOpts, pulumi.IgnoreChanges([]string{"records"}))
		}
		srv.Record, err = route53.NewRecord(ctx, resource+"-dns", &route53.RecordArgs{
			Name:    pulumi.String(settings.FQDN()),
			ZoneId:  pulumi.String(serverConfig.AWS.Zone.ID),
			Type:    pulumi.String("A"),
			Records: pulumi.StringArray{srv.Instance.PublicIp},
			Ttl:     pulumi.Int(recordTTL),
		}, recordOpts...)
		if err != nil {
			return nil, err
		}
	}

	if settings.LongLived {
		if err := newSelfAccessPolicy(ctx, resource, srv.Role, srv.Instance.Arn); err != nil {
			return nil, err
		}
		if settings.HasZone() {
			if err := newDNSUpdatePolicy(ctx, resource, srv.Role, serverConfig.AWS.Zone.ID); err != nil {
				return nil, err
			}
		}
	}
	ctx.Log.Info(fmt.Sprintf("declared jitsi server %s (long-lived: %t)", settings.FQDN(), bool(settings.LongLived)), nil)
	return srv, nil
}

// keyPair returns the key name for the instance, or nil for none.
func keyPair(ctx *pulumi.Context, resource string, settings *jitsi.Config) (pulumi.StringPtrInput, error) {
	if settings.SSHKeyName != "" {
		return pulumi.StringPtr(settings.SSHKeyName), nil
	}
	if !settings.LongLived {
		return nil, nil
	}
	pubKey, err := jitsi.GetCreateSSHKey(filepath.Join(settings.KeyDir, ctx.Stack()), settings.Hostname)
	if err != nil {
		return nil, fmt.Errorf("ssh key for %q: %w", settings.Hostname, err)
	}
	keypairResource := resource + "-keypair"
	kp, err := ec2.NewKeyPair(ctx, keypairResource, &ec2.KeyPairArgs{
		KeyName:   pulumi.String(ctx.Project() + "-" + ctx.Stack() + "-" + settings.Hostname),
		PublicKey: pulumi.String(pubKey),
	})
	if err != nil {
		return nil, err
	}
	return kp.KeyName, nil
}
